package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestDefaultStandardThresholdDisablesScorer(t *testing.T) {
	cfg := Default()
	// The shipped standard threshold exceeds any attainable score.
	maxScore := cfg.ScoreWeightTrendDir + cfg.ScoreWeightTrendStr +
		cfg.ScoreWeightPricePos + cfg.ScoreWeightMTFConfirm +
		cfg.ScoreWeightReversal + cfg.ScoreWeightVolatility
	assert.Greater(t, cfg.ScoreThreshold(), maxScore)
}

func TestScoreThresholdByMode(t *testing.T) {
	cfg := Default()

	cfg.TradingMode = ModeConservative
	assert.Equal(t, 75, cfg.ScoreThreshold())
	cfg.TradingMode = ModeAggressive
	assert.Equal(t, 50, cfg.ScoreThreshold())
	cfg.TradingMode = ModeStandard
	assert.Equal(t, 999, cfg.ScoreThreshold())
}

func TestTierLookup(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Tier2, cfg.TierFor("BTCUSDT"))
	assert.Equal(t, Tier1, cfg.TierFor("TAOUSDT"))
	// Unknown symbols default to tier 2.
	assert.Equal(t, Tier2, cfg.TierFor("NEWCOINUSDT"))

	assert.Equal(t, 90.0, cfg.TierMaxPositionPct(Tier1))
	assert.Equal(t, 0.0, cfg.TierMaxPositionPct(TierBlacklist))
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"symbol": "SOLUSDT",
		"grid_max_layers": 4,
		"trading_mode": "aggressive"
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, 4, cfg.GridMaxLayers)
	assert.Equal(t, ModeAggressive, cfg.TradingMode)
	// Untouched fields keep their defaults.
	assert.Equal(t, 70, cfg.BoxLookback)
	assert.Equal(t, 0.0004, cfg.TradingFee)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grid_max_layers": 1}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateCatchesBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Symbol = "" },
		func(c *Config) { c.TradingMode = "yolo" },
		func(c *Config) { c.BoxLookback = 1 },
		func(c *Config) { c.ATRPercentilePeriod = 1 },
		func(c *Config) { c.EMAFastPeriod = 200 },
		func(c *Config) { c.GridMaxPositionPct = 150 },
		func(c *Config) { c.Batch1Ratio = 0 },
		func(c *Config) { c.PartialTPRatio = 1 },
		func(c *Config) { c.TradingFee = -1 },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Errorf(t, cfg.Validate(), "case %d", i)
	}
}
