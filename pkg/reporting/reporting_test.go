package reporting

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
	"github.com/lehoangvu92/box-regime-bot/internal/position"
	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
)

func sampleTrades() []position.TradeRecord {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []position.TradeRecord{
		{
			ID: "01HTEST", Symbol: "BTCUSDT",
			Side: strategy.SideLong, Category: strategy.CategoryTrend,
			Entry: 100, Exit: 125, Qty: 10, Cost: 1000,
			NetPnL: 250, TotalPnL: 250, TotalPct: 25, RMultiple: 5,
			Reason: position.ExitTakeProfit, Phase: position.PhaseBatch1,
			EntryTime: ts, ExitTime: ts.Add(4 * time.Hour),
		},
	}
}

func sampleStats() *engine.Stats {
	return &engine.Stats{
		InitialBalance: 10000, FinalEquity: 10250, TotalReturnPct: 2.5,
		TotalTrades: 1, Wins: 1, WinRate: 100, AvgWinPct: 25,
		ByCategory: map[string]engine.Breakdown{"trend": {Trades: 1, Wins: 1, WinRate: 100, TotalPnL: 250}},
		BySide:     map[string]engine.Breakdown{"LONG": {Trades: 1, Wins: 1, WinRate: 100, TotalPnL: 250}},
		Rejections: map[string]int{"score_too_low": 3},
	}
}

func TestWriteTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	require.NoError(t, WriteTradesCSV(path, sampleTrades()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "01HTEST", rows[1][0])
	assert.Equal(t, "trend", rows[1][2])
	assert.Equal(t, "take_profit", rows[1][14])
}

func TestWriteEquityCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equity.csv")
	samples := []engine.EquitySample{
		{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Equity: 10000, TrendCash: 5000, GridCash: 5000},
		{Timestamp: time.Date(2024, 3, 1, 0, 15, 0, 0, time.UTC), Equity: 10100, TrendCash: 5050, GridCash: 5050},
	}
	require.NoError(t, WriteEquityCSV(path, samples))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "10100", rows[2][1])
}

func TestPrintSummaryRendersTables(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "BTCUSDT", sampleStats())

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "Total Return")
	assert.Contains(t, out, "By Strategy")
	assert.Contains(t, out, "score_too_low")
}

func TestWriteExcelWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	samples := []engine.EquitySample{
		{Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Equity: 10000, TrendCash: 5000, GridCash: 5000},
	}
	require.NoError(t, WriteExcel(path, "BTCUSDT", sampleStats(), sampleTrades(), samples))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
