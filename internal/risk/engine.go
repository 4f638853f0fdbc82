package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tradesentry/signal-sentry-bot/internal/validator"
	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// OrderExecutor places orders on the external venue. Implementations may
// block on network I/O; the engine never calls it while holding its lock.
type OrderExecutor interface {
	PlaceOrder(ctx context.Context, symbol string, side types.Side, quantity, price float64) (orderID string, err error)
}

// Config is the per-run risk budget.
type Config struct {
	AccountBalance  float64
	MaxRiskPerTrade float64 // fraction of balance risked per trade, default 0.02
	MaxDailyLossPct float64 // fraction of balance lost before trading halts, default 0.10
	MaxConcurrent   int     // open positions allowed at once, default 3
	MinConfidence   float64 // score floor distinct from the validator's, default 0.60
	TrailingStop    bool
	TrailingStopPct float64 // distance below the peak-implied price, percent
}

// DefaultConfig returns the stock risk budget for the given balance.
func DefaultConfig(balance float64) Config {
	return Config{
		AccountBalance:  balance,
		MaxRiskPerTrade: 0.02,
		MaxDailyLossPct: 0.10,
		MaxConcurrent:   3,
		MinConfidence:   0.60,
		TrailingStop:    true,
		TrailingStopPct: 1.0,
	}
}

// Engine enforces the risk budget, owns the position registry, and drives
// each position through its state machine. Registry and budget mutations
// share one mutex; order placement happens outside it.
type Engine struct {
	mu        sync.Mutex
	config    Config
	executor  OrderExecutor
	positions map[string]*Position
	balance   float64
	dailyLoss float64
	seq       int
}

// NewEngine creates an engine with the given budget and order executor.
func NewEngine(config Config, executor OrderExecutor) *Engine {
	if config.MaxRiskPerTrade == 0 {
		config.MaxRiskPerTrade = 0.02
	}
	if config.MaxDailyLossPct == 0 {
		config.MaxDailyLossPct = 0.10
	}
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = 3
	}
	if config.MinConfidence == 0 {
		config.MinConfidence = 0.60
	}

	return &Engine{
		config:    config,
		executor:  executor,
		positions: make(map[string]*Position),
		balance:   config.AccountBalance,
	}
}

// Admit checks the validated signal against the budget, sizes the position,
// places the entry order, and registers the position as Open. The position
// counts toward the concurrency cap from the moment it is reserved, so
// concurrent admissions cannot oversubscribe while an order is in flight.
func (e *Engine) Admit(ctx context.Context, signal *validator.ValidatedSignal) (*Position, error) {
	e.mu.Lock()

	if e.dailyLoss >= e.balance*e.config.MaxDailyLossPct {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: lost %.2f of %.2f budget", ErrDailyLossExceeded,
			e.dailyLoss, e.balance*e.config.MaxDailyLossPct)
	}
	if e.activeCountLocked() >= e.config.MaxConcurrent {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %d open", ErrMaxPositionsReached, e.activeCountLocked())
	}
	if signal.Score < e.config.MinConfidence {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: score %.3f below %.3f", ErrConfidenceTooLow,
			signal.Score, e.config.MinConfidence)
	}

	stopDistance := signal.Entry - signal.Stop
	if stopDistance < 0 {
		stopDistance = -stopDistance
	}
	if stopDistance == 0 {
		e.mu.Unlock()
		return nil, ErrDegenerateStop
	}
	quantity := (e.balance * e.config.MaxRiskPerTrade) / stopDistance
	if quantity <= 0 {
		e.mu.Unlock()
		return nil, ErrDegenerateStop
	}

	e.seq++
	position := &Position{
		ID:       fmt.Sprintf("%s-%d", signal.Symbol, e.seq),
		Symbol:   signal.Symbol,
		Side:     signal.Side,
		Entry:    signal.Entry,
		Quantity: quantity,
		Stop:     signal.Stop,
		Target:   signal.Target,
		Status:   StatusPending,
	}
	e.positions[position.ID] = position
	e.mu.Unlock()

	orderID, err := e.executor.PlaceOrder(ctx, signal.Symbol, signal.Side, quantity, signal.Entry)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		position.Status = StatusCancelled
		delete(e.positions, position.ID)
		return nil, &ExecutionError{Symbol: signal.Symbol, Err: err}
	}

	position.Status = StatusOpen
	position.OrderID = orderID
	position.OpenedAt = time.Now()
	snapshot := *position
	return &snapshot, nil
}

// Tick re-evaluates every open position on the symbol against the price and
// returns the trades it closed. A fault while evaluating one position never
// prevents the others from being evaluated.
func (e *Engine) Tick(symbol string, price float64) []ClosedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()

	var closed []ClosedTrade
	for id, position := range e.positions {
		if position.Symbol != symbol || position.Status != StatusOpen {
			continue
		}

		trade, ok := e.evaluatePosition(position, price)
		if !ok {
			continue
		}
		delete(e.positions, id)
		closed = append(closed, trade)
	}
	return closed
}

// evaluatePosition advances one open position against a fresh price. It
// reports whether the position closed. Panics from bad position data are
// contained so one poisoned position cannot stall the whole cycle.
func (e *Engine) evaluatePosition(position *Position, price float64) (trade ClosedTrade, closedOut bool) {
	defer func() {
		if recover() != nil {
			closedOut = false
		}
	}()

	if position.Entry == 0 || price <= 0 {
		return ClosedTrade{}, false
	}

	profitPct := (price - position.Entry) / position.Entry * 100
	if position.Side == types.SideShort {
		profitPct = -profitPct
	}
	position.ProfitPct = profitPct
	if profitPct > position.PeakProfitPct {
		position.PeakProfitPct = profitPct
	}

	reason := CloseNone
	switch {
	case e.stopBreached(position, price):
		reason = CloseStopLoss
	case e.targetReached(position, price):
		reason = CloseTakeProfit
	case e.trailingStopHit(position, price):
		reason = CloseTrailingStop
	}
	if reason == CloseNone {
		return ClosedTrade{}, false
	}

	return e.closeLocked(position, price, reason), true
}

func (e *Engine) stopBreached(p *Position, price float64) bool {
	if p.Side == types.SideLong {
		return price <= p.Stop
	}
	return price >= p.Stop
}

func (e *Engine) targetReached(p *Position, price float64) bool {
	if p.Side == types.SideLong {
		return price >= p.Target
	}
	return price <= p.Target
}

// trailingStopHit closes a position that gave back more than the trailing
// distance from its peak-implied price. Only armed once the position has
// been in profit.
func (e *Engine) trailingStopHit(p *Position, price float64) bool {
	if !e.config.TrailingStop || p.PeakProfitPct <= 0 {
		return false
	}

	if p.Side == types.SideLong {
		peakPrice := p.Entry * (1 + p.PeakProfitPct/100)
		return price < peakPrice*(1-e.config.TrailingStopPct/100)
	}
	peakPrice := p.Entry * (1 - p.PeakProfitPct/100)
	return price > peakPrice*(1+e.config.TrailingStopPct/100)
}

// closeLocked finalizes a position and settles the budget. Caller holds the
// lock and removes the position from the registry.
func (e *Engine) closeLocked(position *Position, price float64, reason CloseReason) ClosedTrade {
	pnl := (price - position.Entry) * position.Quantity
	if position.Side == types.SideShort {
		pnl = -pnl
	}

	position.Status = StatusClosed
	position.CloseReason = reason

	e.balance += pnl
	if pnl < 0 {
		e.dailyLoss += -pnl
	}

	now := time.Now()
	return ClosedTrade{
		Symbol:      position.Symbol,
		Side:        position.Side,
		Entry:       position.Entry,
		Exit:        price,
		Quantity:    position.Quantity,
		PnL:         pnl,
		ProfitPct:   position.ProfitPct,
		Reason:      reason,
		HoldingTime: now.Sub(position.OpenedAt),
		ClosedAt:    now,
	}
}

// activeCountLocked counts positions holding a concurrency slot. Pending
// positions count: their order is in flight.
func (e *Engine) activeCountLocked() int {
	count := 0
	for _, p := range e.positions {
		if p.Status == StatusPending || p.Status == StatusOpen {
			count++
		}
	}
	return count
}

// OpenPositions returns a snapshot of every registered position.
func (e *Engine) OpenPositions() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	return out
}

// OpenCount returns the number of positions holding a concurrency slot.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeCountLocked()
}

// Balance returns the current account balance.
func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// DailyLoss returns the realized loss accumulated since the last reset.
func (e *Engine) DailyLoss() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dailyLoss
}

// ResetDailyBudget clears the loss accumulator. The scheduler around the
// engine calls this on the daily boundary.
func (e *Engine) ResetDailyBudget() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dailyLoss = 0
}
