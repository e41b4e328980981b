package rangebox

import "github.com/lehoangvu92/box-regime-bot/pkg/types"

// Tracker maintains the trading channel. In sticky mode the channel is
// computed once from the trailing lookback window and then held fixed until
// the close escapes it by more than escapeMult*ATR for escapeBars consecutive
// bars, at which point it recomputes from the current trailing window. The
// escape counter resets whenever the close comes back inside, and after every
// recompute.
//
// With sticky mode off the channel is a plain rolling max/min of the trailing
// window.
type Tracker struct {
	lookback   int
	escapeMult float64
	escapeBars int
	sticky     bool

	highs []float64
	lows  []float64
	n     int

	boxHigh float64
	boxLow  float64
	haveBox bool

	escapeCount int

	runHigh float64
	runLow  float64
}

// New creates a tracker. lookback is the channel window in bars.
func New(lookback int, escapeMult float64, escapeBars int, sticky bool) *Tracker {
	return &Tracker{
		lookback:   lookback,
		escapeMult: escapeMult,
		escapeBars: escapeBars,
		sticky:     sticky,
		highs:      make([]float64, 0, lookback),
		lows:       make([]float64, 0, lookback),
	}
}

// Update folds one bar in and returns the current channel bounds. Before the
// lookback window fills, the bounds are the running extremes seen so far.
func (t *Tracker) Update(bar types.OHLCV, atr float64) (high, low float64) {
	t.highs = append(t.highs, bar.High)
	t.lows = append(t.lows, bar.Low)
	if len(t.highs) > t.lookback {
		t.highs = t.highs[1:]
		t.lows = t.lows[1:]
	}

	if t.n == 0 {
		t.runHigh = bar.High
		t.runLow = bar.Low
	} else {
		if bar.High > t.runHigh {
			t.runHigh = bar.High
		}
		if bar.Low < t.runLow {
			t.runLow = bar.Low
		}
	}
	t.n++

	if t.n < t.lookback {
		return t.runHigh, t.runLow
	}

	if !t.sticky {
		t.boxHigh, t.boxLow = t.windowExtremes()
		t.haveBox = true
		return t.boxHigh, t.boxLow
	}

	if !t.haveBox {
		t.boxHigh, t.boxLow = t.windowExtremes()
		t.haveBox = true
		t.escapeCount = 0
		return t.boxHigh, t.boxLow
	}

	threshold := atr * t.escapeMult
	if bar.Close > t.boxHigh+threshold || bar.Close < t.boxLow-threshold {
		t.escapeCount++
	} else {
		t.escapeCount = 0
	}

	if t.escapeCount >= t.escapeBars {
		t.boxHigh, t.boxLow = t.windowExtremes()
		t.escapeCount = 0
	}

	return t.boxHigh, t.boxLow
}

// Bounds returns the current channel without updating it.
func (t *Tracker) Bounds() (high, low float64) {
	if !t.haveBox {
		return t.runHigh, t.runLow
	}
	return t.boxHigh, t.boxLow
}

func (t *Tracker) windowExtremes() (high, low float64) {
	high = t.highs[0]
	low = t.lows[0]
	for i := 1; i < len(t.highs); i++ {
		if t.highs[i] > high {
			high = t.highs[i]
		}
		if t.lows[i] < low {
			low = t.lows[i]
		}
	}
	return high, low
}
