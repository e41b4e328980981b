package engine

import (
	"math"

	"github.com/lehoangvu92/box-regime-bot/pkg/data"
)

// Breakdown is the result slice for one trade category or side.
type Breakdown struct {
	Trades   int
	Wins     int
	WinRate  float64
	TotalPnL float64
}

// Stats aggregates a finished simulation.
type Stats struct {
	InitialBalance float64
	FinalEquity    float64
	TotalReturnPct float64

	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64

	AvgWinPct    float64
	AvgLossPct   float64
	ProfitFactor float64
	AvgR         float64

	MaxDrawdownPct float64
	Sharpe         float64

	ByCategory map[string]Breakdown
	BySide     map[string]Breakdown
	Rejections map[string]int
}

// Stats computes the aggregate results from the equity curve and the closed
// trades. It can be called at any point in a run.
func (e *Engine) Stats() *Stats {
	s := &Stats{
		InitialBalance: e.initialBalance,
		FinalEquity:    e.initialBalance,
		ByCategory:     make(map[string]Breakdown),
		BySide:         make(map[string]Breakdown),
		Rejections:     make(map[string]int),
	}

	for reason, n := range e.rejections {
		s.Rejections[reason.String()] = n
	}

	if len(e.equity) > 0 {
		s.FinalEquity = e.equity[len(e.equity)-1].Equity
	}
	s.TotalReturnPct = (s.FinalEquity - s.InitialBalance) / s.InitialBalance * 100

	var winSum, lossSum, rSum float64
	for _, tr := range e.trades {
		s.TotalTrades++
		rSum += tr.RMultiple

		if tr.TotalPnL > 0 {
			s.Wins++
			winSum += tr.TotalPct
		} else {
			s.Losses++
			lossSum += math.Abs(tr.TotalPct)
		}

		cat := s.ByCategory[tr.Category.String()]
		cat.Trades++
		cat.TotalPnL += tr.TotalPnL
		if tr.TotalPnL > 0 {
			cat.Wins++
		}
		s.ByCategory[tr.Category.String()] = cat

		side := s.BySide[tr.Side.String()]
		side.Trades++
		side.TotalPnL += tr.TotalPnL
		if tr.TotalPnL > 0 {
			side.Wins++
		}
		s.BySide[tr.Side.String()] = side
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
		s.AvgR = rSum / float64(s.TotalTrades)
	}
	if s.Wins > 0 {
		s.AvgWinPct = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPct = lossSum / float64(s.Losses)
	}
	if s.AvgLossPct > 0 {
		s.ProfitFactor = s.AvgWinPct / s.AvgLossPct
	}

	for key, b := range s.ByCategory {
		if b.Trades > 0 {
			b.WinRate = float64(b.Wins) / float64(b.Trades) * 100
		}
		s.ByCategory[key] = b
	}
	for key, b := range s.BySide {
		if b.Trades > 0 {
			b.WinRate = float64(b.Wins) / float64(b.Trades) * 100
		}
		s.BySide[key] = b
	}

	s.MaxDrawdownPct = e.maxDrawdown()
	s.Sharpe = e.sharpe()
	return s
}

func (e *Engine) maxDrawdown() float64 {
	peak := 0.0
	maxDD := 0.0
	for _, sample := range e.equity {
		if sample.Equity > peak {
			peak = sample.Equity
		}
		if peak > 0 {
			dd := (peak - sample.Equity) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpe annualizes the per-bar equity returns by 252 trading days times the
// bars per day implied by the base timeframe.
func (e *Engine) sharpe() float64 {
	if len(e.equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(e.equity)-1)
	for i := 1; i < len(e.equity); i++ {
		prev := e.equity[i-1].Equity
		if prev <= 0 {
			continue
		}
		returns = append(returns, e.equity[i].Equity/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	barsPerDay := 1.0
	if d, err := data.ParseTimeframe(e.cfg.BaseTimeframe); err == nil && d > 0 {
		barsPerDay = float64(24*60*60) / d.Seconds()
	}
	return mean / std * math.Sqrt(252*barsPerDay)
}
