package indicators

import (
	"math"

	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// ATR is an incremental average true range smoothed with an EMA. The first
// bar has no previous close, so its true range is simply high minus low.
type ATR struct {
	ema       *EMA
	lastClose float64
	started   bool
}

// NewATR creates an ATR for the given period.
func NewATR(period int) *ATR {
	return &ATR{ema: NewEMA(period)}
}

// Update folds one bar into the range and returns the new ATR value.
func (a *ATR) Update(bar types.OHLCV) float64 {
	tr := bar.High - bar.Low
	if a.started {
		tr = math.Max(tr, math.Max(
			math.Abs(bar.High-a.lastClose),
			math.Abs(bar.Low-a.lastClose),
		))
	}
	a.lastClose = bar.Close
	a.started = true
	return a.ema.Update(tr)
}

// Last returns the current ATR without updating it.
func (a *ATR) Last() float64 {
	return a.ema.Last()
}
