package indicators

// PercentileRank ranks the newest value against a trailing window of its
// predecessors. The rank is the share of strictly smaller predecessors, in
// percent. With fewer than two samples the rank is a neutral 50.
type PercentileRank struct {
	window int
	values []float64
}

// NewPercentileRank creates a rank tracker over the given window size.
func NewPercentileRank(window int) *PercentileRank {
	return &PercentileRank{
		window: window,
		values: make([]float64, 0, window),
	}
}

// Update appends one value and returns its rank within the window.
func (p *PercentileRank) Update(value float64) float64 {
	p.values = append(p.values, value)
	if len(p.values) > p.window {
		p.values = p.values[1:]
	}

	n := len(p.values)
	if n < 2 {
		return 50.0
	}

	below := 0
	for _, v := range p.values[:n-1] {
		if value > v {
			below++
		}
	}
	return float64(below) / float64(n-1) * 100.0
}
