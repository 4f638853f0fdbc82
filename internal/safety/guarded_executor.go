package safety

import (
	"context"
	"fmt"

	"github.com/tradesentry/signal-sentry-bot/internal/risk"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// GuardedExecutor wraps an order executor with rate limiting and a circuit
// breaker so a degraded venue cannot be hammered by the admission path.
type GuardedExecutor struct {
	inner   risk.OrderExecutor
	breaker *CircuitBreaker
	limiter *RateLimiter
}

// NewGuardedExecutor wraps inner with the given protections. Either guard
// may be nil to disable it.
func NewGuardedExecutor(inner risk.OrderExecutor, breaker *CircuitBreaker, limiter *RateLimiter) *GuardedExecutor {
	return &GuardedExecutor{
		inner:   inner,
		breaker: breaker,
		limiter: limiter,
	}
}

// PlaceOrder applies the rate limit, then runs the placement through the
// circuit breaker.
func (g *GuardedExecutor) PlaceOrder(ctx context.Context, symbol string, side types.Side, quantity, price float64) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiting failed: %w", err)
		}
	}

	if g.breaker == nil {
		return g.inner.PlaceOrder(ctx, symbol, side, quantity, price)
	}

	var orderID string
	err := g.breaker.Call(func() error {
		var err error
		orderID, err = g.inner.PlaceOrder(ctx, symbol, side, quantity, price)
		return err
	})
	if err != nil {
		return "", err
	}
	return orderID, nil
}
