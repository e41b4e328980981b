package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

func bar(o, h, l, c float64) types.OHLCV {
	return types.OHLCV{Open: o, High: h, Low: l, Close: c, Volume: 1, Timestamp: time.Now()}
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	ema := NewEMA(10)
	assert.False(t, ema.Initialized())

	v := ema.Update(100.0)
	assert.Equal(t, 100.0, v)
	assert.True(t, ema.Initialized())
}

func TestEMARecurrence(t *testing.T) {
	ema := NewEMA(9) // alpha = 0.2
	ema.Update(100.0)
	v := ema.Update(110.0)
	assert.InDelta(t, 102.0, v, 1e-9)
	v = ema.Update(110.0)
	assert.InDelta(t, 103.6, v, 1e-9)
	assert.Equal(t, v, ema.Last())
}

func TestATRFirstBarUsesHighLow(t *testing.T) {
	atr := NewATR(14)
	v := atr.Update(bar(100, 105, 95, 102))
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestATRIncludesGaps(t *testing.T) {
	atr := NewATR(1) // alpha = 1, ATR == latest TR
	atr.Update(bar(100, 101, 99, 100))
	// Gap up: high-low = 2 but high-prevClose = 10.
	v := atr.Update(bar(109, 110, 108, 109))
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestATRNeverNegative(t *testing.T) {
	atr := NewATR(5)
	bars := []types.OHLCV{
		bar(100, 100, 100, 100),
		bar(100, 120, 80, 90),
		bar(90, 91, 89, 90),
	}
	for _, b := range bars {
		assert.GreaterOrEqual(t, atr.Update(b), 0.0)
	}
}

func TestPercentileRankNeutralWhenShort(t *testing.T) {
	p := NewPercentileRank(100)
	assert.Equal(t, 50.0, p.Update(5.0))
}

func TestPercentileRankKnownValues(t *testing.T) {
	p := NewPercentileRank(100)
	p.Update(1.0)
	p.Update(2.0)
	p.Update(3.0)
	p.Update(4.0)
	// 5 is above all four predecessors.
	assert.InDelta(t, 100.0, p.Update(5.0), 1e-9)
	// 2.5 is above two of the five predecessors {1,2,3,4,5}.
	assert.InDelta(t, 40.0, p.Update(2.5), 1e-9)
}

func TestPercentileRankWindowEviction(t *testing.T) {
	p := NewPercentileRank(3)
	p.Update(100.0)
	p.Update(1.0)
	p.Update(2.0)
	// Window is now {1, 2, 3}; the 100 has been evicted.
	assert.InDelta(t, 100.0, p.Update(3.0), 1e-9)
}

func TestPricePositionBounds(t *testing.T) {
	assert.Equal(t, 0.0, PricePosition(90, 110, 100))  // below the channel
	assert.Equal(t, 1.0, PricePosition(120, 110, 100)) // above the channel
	assert.InDelta(t, 0.5, PricePosition(105, 110, 100), 1e-9)
	assert.Equal(t, 0.5, PricePosition(100, 100, 100)) // degenerate channel
}

func TestReversalFlagsBullishHammer(t *testing.T) {
	// Long lower wick, small body, close above open.
	bull, bear := ReversalFlags(bar(99.5, 100, 90, 99.8))
	assert.True(t, bull)
	assert.False(t, bear)
}

func TestReversalFlagsBearishShootingStar(t *testing.T) {
	bull, bear := ReversalFlags(bar(90.5, 100, 90, 90.2))
	assert.False(t, bull)
	assert.True(t, bear)
}

func TestReversalFlagsZeroRange(t *testing.T) {
	bull, bear := ReversalFlags(bar(100, 100, 100, 100))
	assert.False(t, bull)
	assert.False(t, bear)
}

func TestReversalFlagsWrongCloseSide(t *testing.T) {
	// Hammer shape but the close is below the open.
	bull, _ := ReversalFlags(bar(99.8, 100, 90, 99.5))
	assert.False(t, bull)
}

func TestCrossTrackerExclusivity(t *testing.T) {
	c := NewCrossTracker()

	g, d := c.Update(10, 11) // first update never fires
	assert.False(t, g)
	assert.False(t, d)

	g, d = c.Update(12, 11) // golden cross
	assert.True(t, g)
	assert.False(t, d)

	g, d = c.Update(13, 11) // still above, no new cross
	assert.False(t, g)
	assert.False(t, d)

	g, d = c.Update(10, 11) // death cross
	assert.False(t, g)
	assert.True(t, d)
}

func TestCrossTrackerFromEquality(t *testing.T) {
	c := NewCrossTracker()
	c.Update(10, 10)
	g, d := c.Update(11, 10)
	assert.True(t, g)
	assert.False(t, d)
}

func TestCacheSeriesStayAligned(t *testing.T) {
	c := NewCache(CacheConfig{
		EMAFastPeriod:    3,
		EMASlowPeriod:    5,
		ATRPeriod:        3,
		PercentileWindow: 10,
		TrackCross:       true,
		TrackReversals:   true,
	})

	for i := 0; i < 20; i++ {
		price := 100.0 + float64(i)
		c.Append(bar(price, price+1, price-1, price+0.5))
	}

	require.Equal(t, 20, c.Len())
	assert.Len(t, c.EMAFast, 20)
	assert.Len(t, c.EMASlow, 20)
	assert.Len(t, c.ATRVals, 20)
	assert.Len(t, c.ATRRank, 20)
	assert.Len(t, c.Golden, 20)
	assert.Len(t, c.Death, 20)
	assert.Len(t, c.BullRev, 20)
	assert.Len(t, c.BearRev, 20)

	// Rising closes keep the fast EMA above the slow one.
	last := c.Len() - 1
	assert.Greater(t, c.EMAFast[last], c.EMASlow[last])
}
