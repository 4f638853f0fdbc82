package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	value, err := SMA([]float64{1, 2, 3, 4, 5}, 5)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, value)

	// Only the trailing window counts
	value, err = SMA([]float64{100, 1, 2, 3}, 3)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, value)
}

func TestSMA_InsufficientData(t *testing.T) {
	_, err := SMA([]float64{1, 2}, 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEMA_ConstantSeries(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 42.0
	}

	value, err := EMA(prices, 12)
	assert.NoError(t, err)
	assert.InDelta(t, 42.0, value, 1e-9)
}

func TestEMA_TracksTrend(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}

	fast, err := EMA(prices, 12)
	assert.NoError(t, err)
	slow, err := EMA(prices, 26)
	assert.NoError(t, err)

	// In a steady uptrend the faster average sits above the slower one
	assert.Greater(t, fast, slow)
}

func TestReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})
	assert.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5, 5}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
