package reporting

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
)

// PrintSummary renders the simulation results as console tables.
func PrintSummary(w io.Writer, symbol string, stats *engine.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Simulation Results - %s", symbol))

	t.AppendRows([]table.Row{
		{"Initial Balance", fmt.Sprintf("%.2f", stats.InitialBalance)},
		{"Final Equity", fmt.Sprintf("%.2f", stats.FinalEquity)},
		{"Total Return", fmt.Sprintf("%.2f%%", stats.TotalReturnPct)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", stats.MaxDrawdownPct)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", stats.Sharpe)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Total Trades", stats.TotalTrades},
		{"Win Rate", fmt.Sprintf("%.1f%% (%d/%d)", stats.WinRate, stats.Wins, stats.TotalTrades)},
		{"Avg Win", fmt.Sprintf("%.2f%%", stats.AvgWinPct)},
		{"Avg Loss", fmt.Sprintf("%.2f%%", stats.AvgLossPct)},
		{"Profit Factor", fmt.Sprintf("%.2f", stats.ProfitFactor)},
		{"Avg R", fmt.Sprintf("%.2f", stats.AvgR)},
	})
	t.Render()

	printBreakdown(w, "By Strategy", stats.ByCategory)
	printBreakdown(w, "By Side", stats.BySide)
	printRejections(w, stats.Rejections)
}

func printBreakdown(w io.Writer, title string, rows map[string]engine.Breakdown) {
	if len(rows) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"", "Trades", "Win Rate", "Total PnL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b := rows[k]
		t.AppendRow(table.Row{
			k, b.Trades,
			fmt.Sprintf("%.1f%%", b.WinRate),
			fmt.Sprintf("%.2f", b.TotalPnL),
		})
	}
	t.Render()
}

func printRejections(w io.Writer, rejections map[string]int) {
	if len(rejections) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Signal Rejections")

	keys := make([]string, 0, len(rejections))
	for k := range rejections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t.AppendRow(table.Row{k, rejections[k]})
	}
	t.Render()
}
