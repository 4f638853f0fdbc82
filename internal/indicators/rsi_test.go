package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI_Calculate(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}

	value, err := rsi.Calculate(prices)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, value, 0.0)
	assert.LessOrEqual(t, value, 100.0)
}

func TestRSI_AllGains(t *testing.T) {
	rsi := NewRSI(14)

	// Strictly rising prices have no losses, RSI pegs at 100
	prices := make([]float64, 16)
	for i := range prices {
		prices[i] = 50.0 + float64(i)*2
	}

	value, err := rsi.Calculate(prices)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_Oversold(t *testing.T) {
	rsi := NewRSI(14)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0 - float64(i)*2
	}

	value, err := rsi.Calculate(prices)
	assert.NoError(t, err)
	assert.Less(t, value, 30.0)
}

func TestRSI_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)

	_, err := rsi.Calculate([]float64{100, 101, 102})
	assert.ErrorIs(t, err, ErrInsufficientData)
}
