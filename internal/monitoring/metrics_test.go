package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTradeClosed_NegativePnL(t *testing.T) {
	before := testutil.ToFloat64(realizedPnL)

	// A losing trade must move the realized P&L down without panicking.
	assert.NotPanics(t, func() {
		RecordTradeClosed("BTCUSDT", "STOP_LOSS", -20.0)
	})
	assert.InDelta(t, before-20.0, testutil.ToFloat64(realizedPnL), 1e-9)

	RecordTradeClosed("BTCUSDT", "TAKE_PROFIT", 80.0)
	assert.InDelta(t, before+60.0, testutil.ToFloat64(realizedPnL), 1e-9)
}
