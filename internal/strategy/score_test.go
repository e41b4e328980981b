package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

func scorerConfig() *config.Config {
	cfg := config.Default()
	cfg.TradingMode = config.ModeConservative // threshold 75
	return cfg
}

func TestScoreBestCaseLong(t *testing.T) {
	s := NewBoxScorer(scorerConfig())

	sc := s.Score(SideLong, 0.05, true, false, 50, true)
	// Half-weight base points truncate: 12 + 10, then full price position,
	// MTF, reversal, volatility.
	assert.Equal(t, 12, sc.TrendDir)
	assert.Equal(t, 10, sc.TrendStrength)
	assert.Equal(t, 25, sc.PricePos)
	assert.Equal(t, 10, sc.MTFConfirm)
	assert.Equal(t, 10, sc.Reversal)
	assert.Equal(t, 10, sc.Volatility)
	assert.Equal(t, 87, sc.Total)
}

func TestScorePricePositionGrading(t *testing.T) {
	s := NewBoxScorer(scorerConfig())

	assert.Equal(t, 25, s.Score(SideLong, 0.10, false, false, 50, false).PricePos)
	assert.Equal(t, 22, s.Score(SideLong, 0.14, false, false, 50, false).PricePos) // 22.5 truncates
	assert.Equal(t, 20, s.Score(SideLong, 0.18, false, false, 50, false).PricePos)
	assert.Equal(t, 17, s.Score(SideLong, 0.24, false, false, 50, false).PricePos) // 17.5 truncates
	assert.Equal(t, 0, s.Score(SideLong, 0.30, false, false, 50, false).PricePos)

	assert.Equal(t, 25, s.Score(SideShort, 0.95, false, false, 50, false).PricePos)
	assert.Equal(t, 0, s.Score(SideShort, 0.70, false, false, 50, false).PricePos)
}

func TestScoreVolatilityBands(t *testing.T) {
	s := NewBoxScorer(scorerConfig())

	assert.Equal(t, 10, s.Score(SideLong, 0.05, false, false, 50, false).Volatility)
	assert.Equal(t, 7, s.Score(SideLong, 0.05, false, false, 20, false).Volatility) // edge band
	assert.Equal(t, 0, s.Score(SideLong, 0.05, false, false, 10, false).Volatility) // outside
}

func TestScoreReversalMatchesSide(t *testing.T) {
	s := NewBoxScorer(scorerConfig())

	assert.Equal(t, 10, s.Score(SideLong, 0.05, true, false, 50, false).Reversal)
	assert.Equal(t, 0, s.Score(SideLong, 0.05, false, true, 50, false).Reversal)
	assert.Equal(t, 10, s.Score(SideShort, 0.95, false, true, 50, false).Reversal)
}

func TestBoxGeneratorAcceptsDeepDiscount(t *testing.T) {
	g := NewBoxGenerator(scorerConfig())

	side, sc, reason := g.Generate(100, 105, 95, 0.05, true, false, 50, 101, 100, regime.MacroBullish)
	assert.Equal(t, SideLong, side)
	assert.Equal(t, RejectNone, reason)
	assert.GreaterOrEqual(t, sc.Total, 75)
}

func TestBoxGeneratorStandardThresholdDisables(t *testing.T) {
	cfg := config.Default() // standard mode, threshold 999
	g := NewBoxGenerator(cfg)

	side, _, reason := g.Generate(100, 105, 95, 0.05, true, false, 50, 101, 100, regime.MacroBullish)
	assert.Equal(t, SideNone, side)
	assert.Equal(t, RejectScoreTooLow, reason)
}

func TestBoxGeneratorZoneGate(t *testing.T) {
	g := NewBoxGenerator(scorerConfig())

	_, _, reason := g.Generate(100, 105, 95, 0.5, false, false, 50, 101, 100, regime.MacroNeutral)
	assert.Equal(t, RejectPriceNotInZone, reason)
}

func TestBoxGeneratorVolatilityFilter(t *testing.T) {
	g := NewBoxGenerator(scorerConfig())

	// 1% box is under the 2% floor.
	_, _, reason := g.Generate(100, 100.5, 99.5, 0.05, false, false, 50, 101, 100, regime.MacroNeutral)
	assert.Equal(t, RejectVolatilityFilter, reason)

	// 20% box is over the 15% cap.
	_, _, reason = g.Generate(100, 110, 90, 0.05, false, false, 50, 101, 100, regime.MacroNeutral)
	assert.Equal(t, RejectVolatilityFilter, reason)
}

func TestBoxGeneratorMacroFilter(t *testing.T) {
	g := NewBoxGenerator(scorerConfig())

	// Premium-zone short against a bullish macro trend.
	_, _, reason := g.Generate(100, 105, 95, 0.95, false, true, 50, 99, 100, regime.MacroBullish)
	assert.Equal(t, RejectAgainstMacroTrend, reason)

	_, _, reason = g.Generate(100, 105, 95, 0.05, true, false, 50, 101, 100, regime.MacroBearish)
	assert.Equal(t, RejectAgainstMacroTrend, reason)
}

func TestBoxGeneratorNaNInputs(t *testing.T) {
	g := NewBoxGenerator(scorerConfig())

	_, _, reason := g.Generate(100, math.NaN(), 95, 0.05, false, false, 50, 101, 100, regime.MacroNeutral)
	assert.Equal(t, RejectInsufficientData, reason)
}
