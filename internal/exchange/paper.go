package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// PaperOrder is a simulated fill recorded by the paper executor.
type PaperOrder struct {
	ID       string
	Symbol   string
	Side     types.Side
	Quantity float64
	Price    float64
}

// PaperExecutor confirms every order instantly without touching a venue.
// Used for dry-run mode and tests.
type PaperExecutor struct {
	mu     sync.Mutex
	seq    int
	orders []PaperOrder
}

// NewPaperExecutor creates an empty paper executor.
func NewPaperExecutor() *PaperExecutor {
	return &PaperExecutor{}
}

// PlaceOrder records the order and returns a synthetic confirmation ID.
func (e *PaperExecutor) PlaceOrder(_ context.Context, symbol string, side types.Side, quantity, price float64) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	order := PaperOrder{
		ID:       fmt.Sprintf("paper-%d", e.seq),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
	}
	e.orders = append(e.orders, order)
	return order.ID, nil
}

// Orders returns a snapshot of every simulated fill.
func (e *PaperExecutor) Orders() []PaperOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]PaperOrder, len(e.orders))
	copy(out, e.orders)
	return out
}
