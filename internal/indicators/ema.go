package indicators

// EMA is an incremental exponential moving average. The first value seeds the
// average directly; every later value applies the standard recurrence with
// alpha = 2/(period+1).
type EMA struct {
	alpha       float64
	last        float64
	initialized bool
}

// NewEMA creates an EMA for the given period.
func NewEMA(period int) *EMA {
	return &EMA{alpha: 2.0 / float64(period+1)}
}

// Update folds one value into the average and returns the new value.
func (e *EMA) Update(value float64) float64 {
	if !e.initialized {
		e.last = value
		e.initialized = true
		return e.last
	}
	e.last = e.alpha*value + (1-e.alpha)*e.last
	return e.last
}

// Last returns the current average without updating it.
func (e *EMA) Last() float64 {
	return e.last
}

// Initialized reports whether at least one value has been folded in.
func (e *EMA) Initialized() bool {
	return e.initialized
}
