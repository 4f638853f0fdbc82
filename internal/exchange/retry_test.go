package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// flakyExecutor fails a fixed number of times before succeeding.
type flakyExecutor struct {
	failures int
	calls    int
}

func (f *flakyExecutor) PlaceOrder(_ context.Context, _ string, _ types.Side, _, _ float64) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("transient venue error")
	}
	return "order-ok", nil
}

func TestRetryingExecutor_EventualSuccess(t *testing.T) {
	flaky := &flakyExecutor{failures: 2}
	executor := NewRetryingExecutor(flaky, 3)
	executor.minDelay = 0
	executor.maxDelay = 0

	orderID, err := executor.PlaceOrder(context.Background(), "BTCUSDT", types.SideLong, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "order-ok", orderID)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryingExecutor_ExhaustsAttempts(t *testing.T) {
	flaky := &flakyExecutor{failures: 10}
	executor := NewRetryingExecutor(flaky, 3)
	executor.minDelay = 0
	executor.maxDelay = 0

	_, err := executor.PlaceOrder(context.Background(), "BTCUSDT", types.SideLong, 1, 100)
	require.Error(t, err)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryingExecutor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flaky := &flakyExecutor{failures: 10}
	executor := NewRetryingExecutor(flaky, 3)

	_, err := executor.PlaceOrder(ctx, "BTCUSDT", types.SideLong, 1, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaperExecutor_RecordsOrders(t *testing.T) {
	paper := NewPaperExecutor()

	id1, err := paper.PlaceOrder(context.Background(), "BTCUSDT", types.SideLong, 2, 100)
	require.NoError(t, err)
	id2, err := paper.PlaceOrder(context.Background(), "ETHUSDT", types.SideShort, 5, 50)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)

	orders := paper.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "BTCUSDT", orders[0].Symbol)
	assert.Equal(t, types.SideShort, orders[1].Side)
}
