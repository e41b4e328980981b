package regime

import "github.com/lehoangvu92/box-regime-bot/pkg/types"

// MacroTrend is the higher-timeframe directional bias.
type MacroTrend int

const (
	MacroNeutral MacroTrend = iota
	MacroBullish
	MacroBearish
)

func (m MacroTrend) String() string {
	switch m {
	case MacroBullish:
		return "BULLISH"
	case MacroBearish:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}

// Regime is the market state that selects the active sub-strategy.
type Regime int

const (
	Uncertain Regime = iota
	RangeBound
	TrendingUp
	TrendingDown
)

func (r Regime) String() string {
	switch r {
	case RangeBound:
		return "RANGE_BOUND"
	case TrendingUp:
		return "TRENDING_UP"
	case TrendingDown:
		return "TRENDING_DOWN"
	default:
		return "UNCERTAIN"
	}
}

// Classifier derives the macro trend and the regime from higher-timeframe
// indicator series. It never reads past the index it is given.
type Classifier struct {
	slowPeriod       int
	macroSlowPeriod  int
	confirmationBars int
}

// NewClassifier creates a classifier. slowPeriod gates the regime warm-up,
// macroSlowPeriod the macro-trend warm-up, and confirmationBars is how many
// trailing bars must confirm a trend.
func NewClassifier(slowPeriod, macroSlowPeriod, confirmationBars int) *Classifier {
	return &Classifier{
		slowPeriod:       slowPeriod,
		macroSlowPeriod:  macroSlowPeriod,
		confirmationBars: confirmationBars,
	}
}

// MacroTrend compares the macro EMA pair at idx. Before the slow EMA has
// settled the answer is always neutral; there is no hysteresis after that.
func (c *Classifier) MacroTrend(fast, slow float64, idx int) MacroTrend {
	if idx < c.macroSlowPeriod+10 {
		return MacroNeutral
	}
	switch {
	case fast > slow:
		return MacroBullish
	case fast < slow:
		return MacroBearish
	default:
		return MacroNeutral
	}
}

// Classify determines the regime at idx. A trend needs every bar in the
// trailing confirmation window fully on one side of the fast EMA and the
// latest close beyond the channel bound on that side; anything less is
// range-bound. Before warm-up the regime is uncertain.
func (c *Classifier) Classify(bars []types.OHLCV, emaFast []float64, idx int, boxHigh, boxLow float64) Regime {
	if idx < c.slowPeriod+10 {
		return Uncertain
	}
	if idx >= len(bars) || idx >= len(emaFast) {
		return Uncertain
	}

	start := idx - c.confirmationBars + 1
	if start < 0 {
		return Uncertain
	}

	allAbove := true
	allBelow := true
	for i := start; i <= idx; i++ {
		if bars[i].Low <= emaFast[i] {
			allAbove = false
		}
		if bars[i].High >= emaFast[i] {
			allBelow = false
		}
	}

	close := bars[idx].Close
	switch {
	case allAbove && close > boxHigh:
		return TrendingUp
	case allBelow && close < boxLow:
		return TrendingDown
	default:
		return RangeBound
	}
}
