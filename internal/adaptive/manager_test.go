package adaptive

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

func seriesWithVolatility(n int, base, swing float64) []types.OHLCV {
	data := make([]types.OHLCV, n)
	price := base
	for i := range data {
		if i%2 == 0 {
			price = base * (1 + swing)
		} else {
			price = base * (1 - swing)
		}
		data[i] = types.OHLCV{
			Open:      price,
			High:      price * 1.001,
			Low:       price * 0.999,
			Close:     price,
			Volume:    1000,
			Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
		}
	}
	return data
}

func TestManager_LazyDefaults(t *testing.T) {
	m := NewManager(NewThresholdStore(DefaultThresholds()))

	th := m.ThresholdsFor("BTCUSDT")
	assert.Equal(t, 85.0, th.MinScore)
	assert.Equal(t, 1.0, th.StopLossPct)
	assert.Equal(t, 3.0, th.TakeProfitPct)
}

func TestManager_HighVolatilityTightens(t *testing.T) {
	m := NewManager(NewThresholdStore(DefaultThresholds()))

	// +/-4% swings every bar, stdev of returns well above 3%
	insight := m.Observe("ETHUSDT", seriesWithVolatility(60, 100, 0.04))
	assert.Greater(t, insight.Volatility, 0.03)

	th := m.ThresholdsFor("ETHUSDT")
	assert.Equal(t, 87.0, th.MinScore)
	assert.InDelta(t, 1.3, th.StopLossPct, 1e-9)
	assert.InDelta(t, 2.5, th.TakeProfitPct, 1e-9)
}

func TestManager_LowVolatilityRelaxes(t *testing.T) {
	m := NewManager(NewThresholdStore(DefaultThresholds()))

	insight := m.Observe("BTCUSDT", seriesWithVolatility(60, 100, 0.001))
	assert.Less(t, insight.Volatility, 0.01)

	th := m.ThresholdsFor("BTCUSDT")
	assert.Equal(t, 83.0, th.MinScore)
	assert.InDelta(t, 0.8, th.StopLossPct, 1e-9)
	assert.InDelta(t, 3.5, th.TakeProfitPct, 1e-9)
}

func TestManager_ThresholdBounds(t *testing.T) {
	m := NewManager(NewThresholdStore(DefaultThresholds()))
	series := seriesWithVolatility(60, 100, 0.04)

	for i := 0; i < 20; i++ {
		m.Observe("SOLUSDT", series)
	}

	th := m.ThresholdsFor("SOLUSDT")
	assert.Equal(t, 95.0, th.MinScore)
	assert.InDelta(t, 2.0, th.StopLossPct, 1e-9)
	assert.InDelta(t, 1.5, th.TakeProfitPct, 1e-9)
}

func TestManager_ConcurrentObserve(t *testing.T) {
	m := NewManager(NewThresholdStore(DefaultThresholds()))
	series := seriesWithVolatility(60, 100, 0.04)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Observe("BTCUSDT", series)
				th := m.ThresholdsFor("BTCUSDT")
				// Readers must always see values inside the bounds
				assert.GreaterOrEqual(t, th.MinScore, 80.0)
				assert.LessOrEqual(t, th.MinScore, 95.0)
			}
		}()
	}
	wg.Wait()
}

func TestTradeHistory_WinRate(t *testing.T) {
	h := NewTradeHistory()

	// No history yet, neutral prior
	assert.Equal(t, 0.50, h.WinRate("BTCUSDT"))

	h.Record("BTCUSDT", true, 2.1)
	h.Record("BTCUSDT", true, 1.4)
	h.Record("BTCUSDT", false, -1.0)
	h.Record("BTCUSDT", true, 0.8)

	assert.InDelta(t, 0.75, h.WinRate("BTCUSDT"), 1e-9)
	assert.Equal(t, 4, h.TradeCount("BTCUSDT"))

	// Other symbols are unaffected
	assert.Equal(t, 0.50, h.WinRate("ETHUSDT"))
}
