package indicators

// BollingerBands calculates mean-reversion bands around a moving average
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands instance
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period: period,
		stdDev: stdDev,
	}
}

// RequiredBars returns the minimum series length for a valid reading.
func (b *BollingerBands) RequiredBars() int {
	return b.period
}

// Calculate computes the band position (%B) of the latest price: 0 at the
// lower band, 1 at the upper band. Values outside [0,1] mean the price has
// escaped the bands.
func (b *BollingerBands) Calculate(prices []float64) (float64, error) {
	if len(prices) < b.RequiredBars() {
		return 0, ErrInsufficientData
	}

	window := prices[len(prices)-b.period:]
	middle, err := SMA(window, b.period)
	if err != nil {
		return 0, err
	}

	sd := StdDev(window)
	if sd == 0 {
		return 0.5, nil
	}

	upper := middle + b.stdDev*sd
	lower := middle - b.stdDev*sd
	current := prices[len(prices)-1]

	return (current - lower) / (upper - lower), nil
}
