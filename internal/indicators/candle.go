package indicators

import (
	"math"

	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// PricePosition locates a close within a high/low channel as a fraction in
// [0, 1]. A degenerate channel maps to the midpoint.
func PricePosition(close, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (close - low) / (high - low)
	return math.Min(1.0, math.Max(0.0, pos))
}

// ReversalFlags detects rejection candles. A bullish reversal needs a lower
// wick longer than twice the body and more than 60% of the bar range, with
// the close at or above the open. Bearish is the mirror image. A zero-range
// bar is never a reversal.
func ReversalFlags(bar types.OHLCV) (bullish, bearish bool) {
	barRange := bar.High - bar.Low
	if barRange <= 0 {
		return false, false
	}

	body := math.Abs(bar.Close - bar.Open)
	upper := bar.High - math.Max(bar.Close, bar.Open)
	lower := math.Min(bar.Close, bar.Open) - bar.Low

	bullish = lower > body*2 && lower > barRange*0.6 && bar.Close >= bar.Open
	bearish = upper > body*2 && upper > barRange*0.6 && bar.Close <= bar.Open
	return bullish, bearish
}

// CrossTracker watches a fast/slow EMA pair for ordering flips between
// consecutive updates. Golden and death can never both fire on one update.
type CrossTracker struct {
	prevFast float64
	prevSlow float64
	has      bool
}

// NewCrossTracker creates an empty tracker.
func NewCrossTracker() *CrossTracker {
	return &CrossTracker{}
}

// Update records the latest pair and reports whether the fast EMA crossed
// above (golden) or below (death) the slow EMA on this update.
func (c *CrossTracker) Update(fast, slow float64) (golden, death bool) {
	if c.has {
		golden = fast > slow && c.prevFast <= c.prevSlow
		death = fast < slow && c.prevFast >= c.prevSlow
	}
	c.prevFast = fast
	c.prevSlow = slow
	c.has = true
	return golden, death
}
