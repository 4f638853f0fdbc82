package indicators

import "math"

// RSI calculates the Relative Strength Index
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// RequiredBars returns the minimum series length for a valid reading.
func (r *RSI) RequiredBars() int {
	return r.period + 1
}

// Calculate computes the RSI value based on the given price slice
func (r *RSI) Calculate(prices []float64) (float64, error) {
	if len(prices) < r.RequiredBars() {
		return 0, ErrInsufficientData
	}

	// Calculate price changes
	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	// Separate gains and losses
	gains := make([]float64, len(changes))
	losses := make([]float64, len(changes))
	for i, change := range changes {
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	avgGain, _ := SMA(gains, r.period)
	avgLoss, _ := SMA(losses, r.period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	return rsi, nil
}
