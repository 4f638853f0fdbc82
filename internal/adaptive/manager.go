package adaptive

import (
	"github.com/tradesentry/signal-sentry-bot/internal/indicators"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// MarketInsight summarizes the regime features learned from one observation
// of a symbol's price series.
type MarketInsight struct {
	Symbol        string
	Volatility    float64 // stdev of bar-to-bar returns
	TrendStrength float64 // relative distance between short and long SMA
	Momentum      float64 // lookback-bar return
	VolumeTrend   float64 // latest volume vs trailing average
}

// Volatility bands that trigger threshold adaptation. Values are fractional
// returns (0.03 = 3%).
const (
	highVolatility = 0.03
	lowVolatility  = 0.01
)

const (
	trendShortPeriod = 10
	trendLongPeriod  = 50
	momentumLookback = 10
	volumePeriod     = 20
)

// Manager learns per-symbol market conditions and nudges the shared
// threshold store in response. It has no accept/reject authority of its own.
type Manager struct {
	store *ThresholdStore
}

// NewManager creates a manager that adapts thresholds in the given store.
func NewManager(store *ThresholdStore) *Manager {
	return &Manager{store: store}
}

// ThresholdsFor returns the current thresholds for a symbol.
func (m *Manager) ThresholdsFor(symbol string) Thresholds {
	return m.store.Get(symbol)
}

// Observe computes regime features from the series and applies the
// adaptation rule to the symbol's thresholds. Series shorter than the
// longest feature window produce a partial insight with the missing
// features left at zero; thresholds only move on a volatility reading.
func (m *Manager) Observe(symbol string, data []types.OHLCV) MarketInsight {
	insight := MarketInsight{Symbol: symbol}
	if len(data) < 2 {
		return insight
	}

	closes := types.Closes(data)
	insight.Volatility = indicators.StdDev(indicators.Returns(closes))

	if short, err := indicators.SMA(closes, trendShortPeriod); err == nil {
		if long, err := indicators.SMA(closes, trendLongPeriod); err == nil && long != 0 {
			insight.TrendStrength = (short - long) / long
		}
	}

	if mom, err := indicators.NewMomentum(momentumLookback).Calculate(closes); err == nil {
		insight.Momentum = mom
	}

	if ratio, err := indicators.VolumeRatio(types.Volumes(data), volumePeriod); err == nil {
		insight.VolumeTrend = ratio
	}

	m.adapt(symbol, insight.Volatility)
	return insight
}

// adapt applies the volatility-driven threshold rule: demand more in choppy
// markets, relax in quiet ones.
func (m *Manager) adapt(symbol string, volatility float64) {
	switch {
	case volatility > highVolatility:
		m.store.update(symbol, func(th *Thresholds) {
			th.MinScore = clamp(th.MinScore+2, minScoreFloor, minScoreCap)
			th.StopLossPct = clamp(th.StopLossPct+0.3, stopLossFloor, stopLossCap)
			th.TakeProfitPct = clamp(th.TakeProfitPct-0.5, takeProfitFloor, takeProfitCap)
		})
	case volatility < lowVolatility:
		m.store.update(symbol, func(th *Thresholds) {
			th.MinScore = clamp(th.MinScore-2, minScoreFloor, minScoreCap)
			th.StopLossPct = clamp(th.StopLossPct-0.2, stopLossFloor, stopLossCap)
			th.TakeProfitPct = clamp(th.TakeProfitPct+0.5, takeProfitFloor, takeProfitCap)
		})
	}
}
