package indicators

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned by every indicator when the price series
// is shorter than the indicator's required period. Callers treat it as a
// degraded input, not a failure.
var ErrInsufficientData = errors.New("insufficient data for indicator calculation")

// SMA computes the Simple Moving Average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 || len(values) < period {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// EMA computes the Exponential Moving Average over the full series with the
// standard 2/(period+1) smoothing factor, seeded with an SMA of the first
// period values.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 || len(values) < period {
		return 0, ErrInsufficientData
	}

	seed, _ := SMA(values[:period], period)
	multiplier := 2.0 / float64(period+1)

	ema := seed
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema, nil
}

// Returns computes bar-to-bar fractional returns of the series.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns[i-1] = 0
			continue
		}
		returns[i-1] = (values[i] - values[i-1]) / values[i-1]
	}
	return returns
}

// StdDev computes the population standard deviation of the series.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
