package types

import "time"

// OHLCV is a single candle bar. Series are ordered ascending by Timestamp.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Ticker is the latest traded price for a symbol.
type Ticker struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}

type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}

// Side is the direction of a proposed or open trade.
type Side int

const (
	SideLong Side = iota
	SideShort
)

func (s Side) String() string {
	switch s {
	case SideLong:
		return "LONG"
	case SideShort:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}

// Closes extracts the close prices of a series.
func Closes(data []OHLCV) []float64 {
	closes := make([]float64, len(data))
	for i, bar := range data {
		closes[i] = bar.Close
	}
	return closes
}

// Volumes extracts the volumes of a series.
func Volumes(data []OHLCV) []float64 {
	volumes := make([]float64, len(data))
	for i, bar := range data {
		volumes[i] = bar.Volume
	}
	return volumes
}
