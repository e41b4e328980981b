package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
	"github.com/lehoangvu92/box-regime-bot/internal/position"
)

// WriteExcel writes the full results workbook: a summary sheet, one row per
// trade, and the equity curve.
func WriteExcel(path, symbol string, stats *engine.Stats, trades []position.TradeRecord, equity []engine.EquitySample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, symbol, stats); err != nil {
		return err
	}
	if err := writeTradesSheet(f, trades); err != nil {
		return err
	}
	if err := writeEquitySheet(f, equity); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, symbol string, stats *engine.Stats) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Symbol", symbol},
		{"Initial Balance", stats.InitialBalance},
		{"Final Equity", stats.FinalEquity},
		{"Total Return %", stats.TotalReturnPct},
		{"Max Drawdown %", stats.MaxDrawdownPct},
		{"Sharpe Ratio", stats.Sharpe},
		{"Total Trades", stats.TotalTrades},
		{"Wins", stats.Wins},
		{"Losses", stats.Losses},
		{"Win Rate %", stats.WinRate},
		{"Avg Win %", stats.AvgWinPct},
		{"Avg Loss %", stats.AvgLossPct},
		{"Profit Factor", stats.ProfitFactor},
		{"Avg R", stats.AvgR},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeTradesSheet(f *excelize.File, trades []position.TradeRecord) error {
	const sheet = "Trades"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{
		"ID", "Symbol", "Category", "Side", "Entry Time", "Exit Time",
		"Entry", "Exit", "Qty", "Net PnL", "Total PnL", "Total %", "R", "Reason",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, tr := range trades {
		row := []interface{}{
			tr.ID, tr.Symbol, tr.Category.String(), tr.Side.String(),
			tr.EntryTime.Format(time.RFC3339), tr.ExitTime.Format(time.RFC3339),
			tr.Entry, tr.Exit, tr.Qty, tr.NetPnL, tr.TotalPnL, tr.TotalPct,
			tr.RMultiple, tr.Reason.String(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeEquitySheet(f *excelize.File, equity []engine.EquitySample) error {
	const sheet = "Equity"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Timestamp", "Equity", "Trend Cash", "Grid Cash"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range equity {
		row := []interface{}{
			s.Timestamp.Format(time.RFC3339), s.Equity, s.TrendCash, s.GridCash,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
