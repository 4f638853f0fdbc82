package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"

	"github.com/tradesentry/signal-sentry-bot/internal/risk"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// RetryingExecutor wraps another executor with jittered exponential backoff.
// Order placement is not idempotent on every venue, so the attempt count
// stays deliberately small.
type RetryingExecutor struct {
	inner       risk.OrderExecutor
	maxAttempts int
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewRetryingExecutor wraps inner with up to maxAttempts tries.
func NewRetryingExecutor(inner risk.OrderExecutor, maxAttempts int) *RetryingExecutor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingExecutor{
		inner:       inner,
		maxAttempts: maxAttempts,
		minDelay:    250 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
}

// PlaceOrder delegates to the wrapped executor, backing off between
// failures until the context is cancelled or attempts run out.
func (e *RetryingExecutor) PlaceOrder(ctx context.Context, symbol string, side types.Side, quantity, price float64) (string, error) {
	b := &backoff.Backoff{
		Min:    e.minDelay,
		Max:    e.maxDelay,
		Factor: 2,
		Jitter: true,
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		orderID, err := e.inner.PlaceOrder(ctx, symbol, side, quantity, price)
		if err == nil {
			return orderID, nil
		}
		lastErr = err

		if attempt == e.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	return "", fmt.Errorf("order placement failed after %d attempts: %w", e.maxAttempts, lastErr)
}
