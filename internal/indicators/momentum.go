package indicators

// Momentum calculates the N-bar rate of change of a price series
type Momentum struct {
	period int
}

// NewMomentum creates a new Momentum instance with the given lookback
func NewMomentum(period int) *Momentum {
	return &Momentum{period: period}
}

// RequiredBars returns the minimum series length for a valid reading.
func (m *Momentum) RequiredBars() int {
	return m.period + 1
}

// Calculate computes the fractional return over the lookback period.
func (m *Momentum) Calculate(prices []float64) (float64, error) {
	if len(prices) < m.RequiredBars() {
		return 0, ErrInsufficientData
	}

	base := prices[len(prices)-1-m.period]
	if base == 0 {
		return 0, nil
	}

	return (prices[len(prices)-1] - base) / base, nil
}

// Acceleration compares the most recent half-period return against the
// preceding one. Positive values mean momentum is building.
func (m *Momentum) Acceleration(prices []float64) (float64, error) {
	half := m.period / 2
	if half == 0 || len(prices) < m.RequiredBars() {
		return 0, ErrInsufficientData
	}

	last := prices[len(prices)-1]
	mid := prices[len(prices)-1-half]
	start := prices[len(prices)-1-2*half]
	if mid == 0 || start == 0 {
		return 0, nil
	}

	recent := (last - mid) / mid
	prior := (mid - start) / start

	return recent - prior, nil
}
