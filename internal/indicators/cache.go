package indicators

import "github.com/lehoangvu92/box-regime-bot/pkg/types"

// CacheConfig selects which series a Cache maintains. A zero period disables
// the corresponding series.
type CacheConfig struct {
	EMAFastPeriod    int
	EMASlowPeriod    int
	MacroFastPeriod  int
	MacroSlowPeriod  int
	ATRPeriod        int
	PercentileWindow int
	TrackCross       bool
	TrackReversals   bool
}

// Cache accumulates one timeframe's bars together with the derived indicator
// series, one value appended per bar. All slices stay index-aligned with
// Bars, so a decision at bar i only ever reads indices <= i.
type Cache struct {
	Bars []types.OHLCV

	EMAFast   []float64
	EMASlow   []float64
	MacroFast []float64
	MacroSlow []float64
	ATRVals   []float64
	ATRRank   []float64
	Golden    []bool
	Death     []bool
	BullRev   []bool
	BearRev   []bool

	emaFast   *EMA
	emaSlow   *EMA
	macroFast *EMA
	macroSlow *EMA
	atr       *ATR
	rank      *PercentileRank
	cross     *CrossTracker
	reversals bool
}

// NewCache creates a cache maintaining the series cfg enables.
func NewCache(cfg CacheConfig) *Cache {
	c := &Cache{reversals: cfg.TrackReversals}
	if cfg.EMAFastPeriod > 0 {
		c.emaFast = NewEMA(cfg.EMAFastPeriod)
	}
	if cfg.EMASlowPeriod > 0 {
		c.emaSlow = NewEMA(cfg.EMASlowPeriod)
	}
	if cfg.MacroFastPeriod > 0 {
		c.macroFast = NewEMA(cfg.MacroFastPeriod)
	}
	if cfg.MacroSlowPeriod > 0 {
		c.macroSlow = NewEMA(cfg.MacroSlowPeriod)
	}
	if cfg.ATRPeriod > 0 {
		c.atr = NewATR(cfg.ATRPeriod)
	}
	if cfg.PercentileWindow > 0 {
		c.rank = NewPercentileRank(cfg.PercentileWindow)
	}
	if cfg.TrackCross {
		c.cross = NewCrossTracker()
	}
	return c
}

// Append folds one bar into every enabled series.
func (c *Cache) Append(bar types.OHLCV) {
	c.Bars = append(c.Bars, bar)

	if c.emaFast != nil {
		c.EMAFast = append(c.EMAFast, c.emaFast.Update(bar.Close))
	}
	if c.emaSlow != nil {
		c.EMASlow = append(c.EMASlow, c.emaSlow.Update(bar.Close))
	}
	if c.macroFast != nil {
		c.MacroFast = append(c.MacroFast, c.macroFast.Update(bar.Close))
	}
	if c.macroSlow != nil {
		c.MacroSlow = append(c.MacroSlow, c.macroSlow.Update(bar.Close))
	}
	if c.atr != nil {
		v := c.atr.Update(bar)
		c.ATRVals = append(c.ATRVals, v)
		if c.rank != nil {
			c.ATRRank = append(c.ATRRank, c.rank.Update(v))
		}
	}
	if c.cross != nil && c.emaFast != nil && c.emaSlow != nil {
		g, d := c.cross.Update(c.emaFast.Last(), c.emaSlow.Last())
		c.Golden = append(c.Golden, g)
		c.Death = append(c.Death, d)
	}
	if c.reversals {
		bull, bear := ReversalFlags(bar)
		c.BullRev = append(c.BullRev, bull)
		c.BearRev = append(c.BearRev, bear)
	}
}

// Len returns the number of bars appended so far.
func (c *Cache) Len() int {
	return len(c.Bars)
}

// Last returns the most recent bar. It panics on an empty cache.
func (c *Cache) Last() types.OHLCV {
	return c.Bars[len(c.Bars)-1]
}
