package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TradingMode selects which scorer acceptance threshold applies.
type TradingMode string

const (
	ModeConservative TradingMode = "conservative"
	ModeStandard     TradingMode = "standard"
	ModeAggressive   TradingMode = "aggressive"
)

// Tier classifies a symbol for position-size capping.
type Tier int

const (
	Tier1         Tier = 1
	Tier2         Tier = 2
	Tier3         Tier = 3
	TierBlacklist Tier = 99
)

// Config holds every strategy parameter as a single flat object supplied at
// engine construction. Nothing in the core reads the environment; that
// belongs to the command layer.
type Config struct {
	Symbol string `json:"symbol"`

	// Timeframes: base series drives the simulation, mid feeds the trend
	// generator, long feeds the regime and macro-trend classifiers.
	BaseTimeframe string `json:"base_timeframe"`
	MidTimeframe  string `json:"mid_timeframe"`
	LongTimeframe string `json:"long_timeframe"`

	// Range/channel parameters.
	BoxLookback     int     `json:"box_lookback"`
	BoxMinRangePct  float64 `json:"box_min_range_pct"`
	BoxMaxRangePct  float64 `json:"box_max_range_pct"`
	UseStickyRange  bool    `json:"use_sticky_range"`
	BoxEscapeATRMul float64 `json:"box_escape_atr_mult"`
	BoxEscapeBars   int     `json:"box_escape_bars"`

	// Macro-trend EMA pair (long timeframe).
	MacroTrendFilter bool `json:"macro_trend_filter"`
	MacroFastPeriod  int  `json:"macro_fast_period"`
	MacroSlowPeriod  int  `json:"macro_slow_period"`

	// Discount/premium entry zones for the legacy scorer, as price-position
	// fractions of the channel.
	DiscountZoneMin float64 `json:"discount_zone_min"`
	DiscountZoneMax float64 `json:"discount_zone_max"`
	PremiumZoneMin  float64 `json:"premium_zone_min"`
	PremiumZoneMax  float64 `json:"premium_zone_max"`

	// Regime / trend EMA periods and confirmation depth.
	EMAFastPeriod         int `json:"ema_fast_period"`
	EMAMidPeriod          int `json:"ema_mid_period"`
	EMASlowPeriod         int `json:"ema_slow_period"`
	TrendConfirmationBars int `json:"trend_confirmation_bars"`

	// ATR and its percentile window.
	ATRPeriod           int     `json:"atr_period"`
	ATRPercentilePeriod int     `json:"atr_percentile_period"`
	ATRPercentileMin    float64 `json:"atr_percentile_min"`
	ATRPercentileMax    float64 `json:"atr_percentile_max"`

	// Legacy scorer thresholds and weights. The shipped standard threshold
	// sits above the maximum attainable score, which disables the box path
	// by configuration while keeping it testable.
	TradingMode            TradingMode `json:"trading_mode"`
	ScoreThresholdConserv  int         `json:"score_threshold_conservative"`
	ScoreThresholdStandard int         `json:"score_threshold_standard"`
	ScoreThresholdAggress  int         `json:"score_threshold_aggressive"`
	ScoreWeightTrendDir    int         `json:"score_weight_trend_direction"`
	ScoreWeightTrendStr    int         `json:"score_weight_trend_strength"`
	ScoreWeightPricePos    int         `json:"score_weight_price_position"`
	ScoreWeightMTFConfirm  int         `json:"score_weight_mtf_confirmation"`
	ScoreWeightReversal    int         `json:"score_weight_reversal_candle"`
	ScoreWeightVolatility  int         `json:"score_weight_volatility"`

	// Grid parameters.
	EnableGrid          bool    `json:"enable_grid"`
	GridMinSpacingPct   float64 `json:"grid_min_spacing_pct"`
	GridMinRangePct     float64 `json:"grid_min_range_pct"`
	GridMaxLayers       int     `json:"grid_max_layers"`
	GridRiskPerLayerPct float64 `json:"grid_risk_per_layer_pct"`
	GridMaxPositionPct  float64 `json:"grid_max_position_pct"`
	GridStopMultiplier  float64 `json:"grid_stop_multiplier"`

	// Risk parameters.
	RiskPerTradePct   float64 `json:"risk_per_trade_pct"`
	LongRiskMult      float64 `json:"long_risk_multiplier"`
	ShortRiskMult     float64 `json:"short_risk_multiplier"`
	StopLossATRMult   float64 `json:"stop_loss_atr_multiplier"`
	TrailingActivateR float64 `json:"trailing_stop_activation_r"`
	TrailingDistATR   float64 `json:"trailing_stop_distance_atr"`

	// Pyramiding batches.
	Batch1Ratio     float64 `json:"batch1_ratio"`
	Batch2Ratio     float64 `json:"batch2_ratio"`
	Batch3Ratio     float64 `json:"batch3_ratio"`
	AddThresholdPct float64 `json:"add_position_threshold_pct"`

	// Take-profit schedule.
	PartialTPRMultiple float64 `json:"partial_tp_r_multiple"`
	PartialTPRatio     float64 `json:"partial_tp_ratio"`
	FullTPRMultiple    float64 `json:"full_tp_r_multiple"`

	// Per-day limits.
	MaxDailyTrades       int     `json:"max_daily_trades"`
	MaxDailyLossPct      float64 `json:"max_daily_loss_pct"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	CooldownHours        float64 `json:"cooldown_hours"`

	// Per-tier position caps, percent of pool balance.
	Tier1MaxPositionPct float64 `json:"tier1_max_position_pct"`
	Tier2MaxPositionPct float64 `json:"tier2_max_position_pct"`
	Tier3MaxPositionPct float64 `json:"tier3_max_position_pct"`

	// Symbol tier table. Unknown symbols fall back to tier 2.
	CoinTiers map[string]Tier `json:"coin_tiers,omitempty"`

	TradingFee  float64 `json:"trading_fee"`
	MinDataBars int     `json:"min_data_bars"`
}

// Default returns the reference configuration. The standard score threshold
// of 999 exceeds the maximum attainable score, so the legacy box path never
// accepts unless reconfigured.
func Default() *Config {
	return &Config{
		Symbol:        "BTCUSDT",
		BaseTimeframe: "15m",
		MidTimeframe:  "1h",
		LongTimeframe: "4h",

		BoxLookback:     70,
		BoxMinRangePct:  2.0,
		BoxMaxRangePct:  15.0,
		UseStickyRange:  true,
		BoxEscapeATRMul: 2.0,
		BoxEscapeBars:   3,

		MacroTrendFilter: true,
		MacroFastPeriod:  20,
		MacroSlowPeriod:  100,

		DiscountZoneMin: 0.0,
		DiscountZoneMax: 0.20,
		PremiumZoneMin:  0.80,
		PremiumZoneMax:  1.0,

		EMAFastPeriod:         20,
		EMAMidPeriod:          50,
		EMASlowPeriod:         100,
		TrendConfirmationBars: 3,

		ATRPeriod:           14,
		ATRPercentilePeriod: 100,
		ATRPercentileMin:    15.0,
		ATRPercentileMax:    85.0,

		TradingMode:            ModeStandard,
		ScoreThresholdConserv:  75,
		ScoreThresholdStandard: 999,
		ScoreThresholdAggress:  50,
		ScoreWeightTrendDir:    25,
		ScoreWeightTrendStr:    20,
		ScoreWeightPricePos:    25,
		ScoreWeightMTFConfirm:  10,
		ScoreWeightReversal:    10,
		ScoreWeightVolatility:  10,

		EnableGrid:          true,
		GridMinSpacingPct:   4.0,
		GridMinRangePct:     5.0,
		GridMaxLayers:       8,
		GridRiskPerLayerPct: 1.5,
		GridMaxPositionPct:  90.0,
		GridStopMultiplier:  1.5,

		RiskPerTradePct:   15.0,
		LongRiskMult:      1.0,
		ShortRiskMult:     1.3,
		StopLossATRMult:   2.5,
		TrailingActivateR: 2.0,
		TrailingDistATR:   1.5,

		Batch1Ratio:     1.0,
		Batch2Ratio:     0.0,
		Batch3Ratio:     0.0,
		AddThresholdPct: 999.0,

		PartialTPRMultiple: 2.5,
		PartialTPRatio:     0.3,
		FullTPRMultiple:    5.0,

		MaxDailyTrades:       5,
		MaxDailyLossPct:      5.0,
		MaxConsecutiveLosses: 4,
		CooldownHours:        1.0,

		Tier1MaxPositionPct: 90.0,
		Tier2MaxPositionPct: 90.0,
		Tier3MaxPositionPct: 90.0,

		CoinTiers: map[string]Tier{
			"TAOUSDT":  Tier1,
			"PUMPUSDT": Tier1,
			"FETUSDT":  Tier1,
			"INJUSDT":  Tier1,
			"BTCUSDT":  Tier2,
			"ETHUSDT":  Tier2,
			"SOLUSDT":  Tier2,
			"DOGEUSDT": Tier3,
		},

		TradingFee:  0.0004,
		MinDataBars: 200,
	}
}

// Load reads a configuration file on top of the defaults, so a partial file
// only overrides what it names.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs comprehensive validation of the strategy configuration.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	switch c.TradingMode {
	case ModeConservative, ModeStandard, ModeAggressive:
	default:
		return fmt.Errorf("trading_mode must be 'conservative', 'standard', or 'aggressive', got: %s", c.TradingMode)
	}

	if c.BoxLookback <= 1 {
		return fmt.Errorf("box_lookback must be greater than 1, got: %d", c.BoxLookback)
	}
	if c.BoxEscapeBars <= 0 {
		return fmt.Errorf("box_escape_bars must be positive, got: %d", c.BoxEscapeBars)
	}
	if c.BoxEscapeATRMul <= 0 {
		return fmt.Errorf("box_escape_atr_mult must be positive, got: %f", c.BoxEscapeATRMul)
	}

	if c.ATRPeriod <= 0 {
		return fmt.Errorf("atr_period must be positive, got: %d", c.ATRPeriod)
	}
	if c.ATRPercentilePeriod < 2 {
		return fmt.Errorf("atr_percentile_period must be at least 2, got: %d", c.ATRPercentilePeriod)
	}

	if c.EMAFastPeriod <= 0 || c.EMASlowPeriod <= 0 || c.MacroFastPeriod <= 0 || c.MacroSlowPeriod <= 0 {
		return fmt.Errorf("EMA periods must be positive")
	}
	if c.EMAFastPeriod >= c.EMASlowPeriod {
		return fmt.Errorf("ema_fast_period (%d) must be less than ema_slow_period (%d)", c.EMAFastPeriod, c.EMASlowPeriod)
	}
	if c.TrendConfirmationBars <= 0 {
		return fmt.Errorf("trend_confirmation_bars must be positive, got: %d", c.TrendConfirmationBars)
	}

	if c.GridMaxLayers < 2 {
		return fmt.Errorf("grid_max_layers must be at least 2, got: %d", c.GridMaxLayers)
	}
	if c.GridMinSpacingPct <= 0 {
		return fmt.Errorf("grid_min_spacing_pct must be positive, got: %f", c.GridMinSpacingPct)
	}
	if c.GridRiskPerLayerPct <= 0 {
		return fmt.Errorf("grid_risk_per_layer_pct must be positive, got: %f", c.GridRiskPerLayerPct)
	}
	if c.GridMaxPositionPct <= 0 || c.GridMaxPositionPct > 100 {
		return fmt.Errorf("grid_max_position_pct must be in (0, 100], got: %f", c.GridMaxPositionPct)
	}
	if c.GridStopMultiplier <= 0 {
		return fmt.Errorf("grid_stop_multiplier must be positive, got: %f", c.GridStopMultiplier)
	}

	if c.RiskPerTradePct <= 0 {
		return fmt.Errorf("risk_per_trade_pct must be positive, got: %f", c.RiskPerTradePct)
	}
	if c.StopLossATRMult <= 0 {
		return fmt.Errorf("stop_loss_atr_multiplier must be positive, got: %f", c.StopLossATRMult)
	}
	if c.Batch1Ratio <= 0 || c.Batch1Ratio > 1 {
		return fmt.Errorf("batch1_ratio must be in (0, 1], got: %f", c.Batch1Ratio)
	}
	if c.PartialTPRatio < 0 || c.PartialTPRatio >= 1 {
		return fmt.Errorf("partial_tp_ratio must be in [0, 1), got: %f", c.PartialTPRatio)
	}
	if c.FullTPRMultiple <= 0 {
		return fmt.Errorf("full_tp_r_multiple must be positive, got: %f", c.FullTPRMultiple)
	}

	if c.TradingFee < 0 {
		return fmt.Errorf("trading_fee cannot be negative, got: %f", c.TradingFee)
	}
	if c.MaxDailyTrades <= 0 {
		return fmt.Errorf("max_daily_trades must be positive, got: %d", c.MaxDailyTrades)
	}

	return nil
}

// ScoreThreshold returns the scorer acceptance threshold for the active
// trading mode.
func (c *Config) ScoreThreshold() int {
	switch c.TradingMode {
	case ModeConservative:
		return c.ScoreThresholdConserv
	case ModeAggressive:
		return c.ScoreThresholdAggress
	default:
		return c.ScoreThresholdStandard
	}
}

// TierFor looks up the tier for a symbol, defaulting to tier 2.
func (c *Config) TierFor(symbol string) Tier {
	if t, ok := c.CoinTiers[symbol]; ok {
		return t
	}
	return Tier2
}

// TierMaxPositionPct returns the maximum position size for a tier as a
// percentage of pool balance. Blacklisted symbols get zero.
func (c *Config) TierMaxPositionPct(t Tier) float64 {
	switch t {
	case Tier1:
		return c.Tier1MaxPositionPct
	case Tier2:
		return c.Tier2MaxPositionPct
	case Tier3:
		return c.Tier3MaxPositionPct
	default:
		return 0
	}
}
