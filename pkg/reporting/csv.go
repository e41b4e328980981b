package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
	"github.com/lehoangvu92/box-regime-bot/internal/position"
)

// WriteTradesCSV writes every closed trade to path, creating parent
// directories as needed.
func WriteTradesCSV(path string, trades []position.TradeRecord) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"id", "symbol", "category", "side", "entry_time", "exit_time",
		"entry", "exit", "qty", "cost", "net_pnl", "total_pnl", "total_pct",
		"r_multiple", "reason", "phase", "macro_at_entry",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write trades header: %w", err)
	}

	for _, tr := range trades {
		row := []string{
			tr.ID,
			tr.Symbol,
			tr.Category.String(),
			tr.Side.String(),
			tr.EntryTime.Format(time.RFC3339),
			tr.ExitTime.Format(time.RFC3339),
			formatFloat(tr.Entry),
			formatFloat(tr.Exit),
			formatFloat(tr.Qty),
			formatFloat(tr.Cost),
			formatFloat(tr.NetPnL),
			formatFloat(tr.TotalPnL),
			formatFloat(tr.TotalPct),
			formatFloat(tr.RMultiple),
			tr.Reason.String(),
			tr.Phase.String(),
			tr.MacroAtEntry.String(),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write trade row: %w", err)
		}
	}
	return nil
}

// WriteEquityCSV writes the equity curve to path.
func WriteEquityCSV(path string, samples []engine.EquitySample) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "equity", "trend_cash", "grid_cash"}); err != nil {
		return fmt.Errorf("failed to write equity header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			s.Timestamp.Format(time.RFC3339),
			formatFloat(s.Equity),
			formatFloat(s.TrendCash),
			formatFloat(s.GridCash),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write equity row: %w", err)
		}
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
