package indicators

// MACD calculates the Moving Average Convergence Divergence line, the
// difference between a fast and a slow EMA. Only the line sign is used by
// the confluence check, so the signal-line smoothing is not computed here.
type MACD struct {
	fastPeriod int
	slowPeriod int
}

// NewMACD creates a new MACD instance with the given fast and slow periods
func NewMACD(fastPeriod, slowPeriod int) *MACD {
	return &MACD{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// RequiredBars returns the minimum series length for a valid reading.
func (m *MACD) RequiredBars() int {
	return m.slowPeriod
}

// Calculate computes the MACD line for the given price slice. A positive
// value means the fast average is above the slow one.
func (m *MACD) Calculate(prices []float64) (float64, error) {
	if len(prices) < m.RequiredBars() {
		return 0, ErrInsufficientData
	}

	fast, err := EMA(prices, m.fastPeriod)
	if err != nil {
		return 0, err
	}
	slow, err := EMA(prices, m.slowPeriod)
	if err != nil {
		return 0, err
	}

	return fast - slow, nil
}
