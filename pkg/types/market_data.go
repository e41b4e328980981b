package types

import (
	"math"
	"time"
)

// OHLCV is a single price bar. Bars are immutable once produced; the engine
// only ever reads them.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Valid reports whether the bar carries usable price data: all four prices
// finite and positive, and high/low enclosing open and close.
func (b OHLCV) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	if b.High < b.Low {
		return false
	}
	if b.High < b.Open || b.High < b.Close {
		return false
	}
	if b.Low > b.Open || b.Low > b.Close {
		return false
	}
	return true
}
