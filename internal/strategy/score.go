package strategy

import (
	"math"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

// Score is the component breakdown of a scored range entry, each part in
// points out of its configured weight.
type Score struct {
	Total         int
	TrendDir      int
	TrendStrength int
	PricePos      int
	MTFConfirm    int
	Reversal      int
	Volatility    int
}

// BoxScorer grades a candidate range entry 0..100 from price position within
// the channel, reversal candles, the ATR percentile sweet spot, and
// mid-timeframe EMA alignment.
type BoxScorer struct {
	cfg *config.Config
}

// NewBoxScorer creates a scorer.
func NewBoxScorer(cfg *config.Config) *BoxScorer {
	return &BoxScorer{cfg: cfg}
}

// Score grades one candidate entry. pricePos is the close's position within
// the channel in [0,1]; atrRank is the ATR percentile.
func (s *BoxScorer) Score(side Side, pricePos float64, bullRev, bearRev bool, atrRank float64, mtfAligned bool) Score {
	c := s.cfg
	var sc Score

	// Base points: in a confirmed range there is no directional trend to
	// grade, so both trend components score half weight. Fractions truncate.
	sc.TrendDir = int(float64(c.ScoreWeightTrendDir) * 0.5)
	sc.TrendStrength = int(float64(c.ScoreWeightTrendStr) * 0.5)

	// Depth into the favorable zone, graded in steps.
	var posFactor float64
	if side == SideLong {
		switch {
		case pricePos <= 0.10:
			posFactor = 1.0
		case pricePos <= 0.15:
			posFactor = 0.9
		case pricePos <= 0.20:
			posFactor = 0.8
		case pricePos <= 0.25:
			posFactor = 0.7
		}
	} else {
		switch {
		case pricePos >= 0.90:
			posFactor = 1.0
		case pricePos >= 0.85:
			posFactor = 0.9
		case pricePos >= 0.80:
			posFactor = 0.8
		case pricePos >= 0.75:
			posFactor = 0.7
		}
	}
	sc.PricePos = int(float64(c.ScoreWeightPricePos) * posFactor)

	if mtfAligned {
		sc.MTFConfirm = c.ScoreWeightMTFConfirm
	}

	if (side == SideLong && bullRev) || (side == SideShort && bearRev) {
		sc.Reversal = c.ScoreWeightReversal
	}

	switch {
	case atrRank >= 30 && atrRank <= 70:
		sc.Volatility = c.ScoreWeightVolatility
	case atrRank >= c.ATRPercentileMin && atrRank <= c.ATRPercentileMax:
		sc.Volatility = int(float64(c.ScoreWeightVolatility) * 0.7)
	}

	sc.Total = sc.TrendDir + sc.TrendStrength + sc.PricePos + sc.MTFConfirm + sc.Reversal + sc.Volatility
	return sc
}

// BoxGenerator is the scored range-entry path: discount/premium zone entries
// inside the channel, gated by the volatility band, the macro-trend filter,
// and the mode threshold.
type BoxGenerator struct {
	cfg    *config.Config
	scorer *BoxScorer
}

// NewBoxGenerator creates a box generator.
func NewBoxGenerator(cfg *config.Config) *BoxGenerator {
	return &BoxGenerator{cfg: cfg, scorer: NewBoxScorer(cfg)}
}

// Generate evaluates the scored entry at the current bar. midFast and
// midSlow are the latest mid-timeframe EMA pair.
func (g *BoxGenerator) Generate(price, boxHigh, boxLow, pricePos float64, bullRev, bearRev bool, atrRank, midFast, midSlow float64, macro regime.MacroTrend) (Side, Score, RejectReason) {
	c := g.cfg

	for _, v := range []float64{price, boxHigh, boxLow, pricePos, atrRank, midFast, midSlow} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SideNone, Score{}, RejectInsufficientData
		}
	}

	boxPct := (boxHigh - boxLow) / price * 100
	if boxPct < c.BoxMinRangePct || boxPct > c.BoxMaxRangePct {
		return SideNone, Score{}, RejectVolatilityFilter
	}

	var side Side
	switch {
	case pricePos >= c.DiscountZoneMin && pricePos <= c.DiscountZoneMax:
		side = SideLong
	case pricePos >= c.PremiumZoneMin && pricePos <= c.PremiumZoneMax:
		side = SideShort
	default:
		return SideNone, Score{}, RejectPriceNotInZone
	}

	if c.MacroTrendFilter {
		if (macro == regime.MacroBullish && side == SideShort) ||
			(macro == regime.MacroBearish && side == SideLong) {
			return SideNone, Score{}, RejectAgainstMacroTrend
		}
	}

	mtfAligned := (side == SideLong && midFast > midSlow) ||
		(side == SideShort && midFast < midSlow)

	sc := g.scorer.Score(side, pricePos, bullRev, bearRev, atrRank, mtfAligned)
	if sc.Total < c.ScoreThreshold() {
		return SideNone, sc, RejectScoreTooLow
	}

	return side, sc, RejectNone
}
