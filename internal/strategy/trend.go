package strategy

import (
	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

// TrendGenerator emits breakout entries from the mid-timeframe EMA cross.
// It only fires on the exact cross bar, and only when the regime agrees with
// the cross direction.
type TrendGenerator struct {
	cfg *config.Config
}

// NewTrendGenerator creates a trend generator.
func NewTrendGenerator(cfg *config.Config) *TrendGenerator {
	return &TrendGenerator{cfg: cfg}
}

// Generate returns the trend entry side for the current bar. midIdx is the
// index of the latest mid-timeframe bar; golden and death are that bar's
// cross flags.
func (g *TrendGenerator) Generate(reg regime.Regime, midIdx int, golden, death bool) (Side, RejectReason) {
	if midIdx < g.cfg.EMASlowPeriod+5 {
		return SideNone, RejectInsufficientData
	}

	switch reg {
	case regime.TrendingUp:
		if golden {
			return SideLong, RejectNone
		}
	case regime.TrendingDown:
		if death {
			return SideShort, RejectNone
		}
	default:
		return SideNone, RejectMarketRegime
	}
	return SideNone, RejectNoSignal
}
