package risk

import (
	"errors"
	"time"

	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// PositionStatus is the lifecycle state of a position. A position is in
// exactly one status at any instant.
type PositionStatus int

const (
	StatusPending PositionStatus = iota
	StatusOpen
	StatusClosed
	StatusCancelled
)

func (s PositionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusOpen:
		return "OPEN"
	case StatusClosed:
		return "CLOSED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// CloseReason records why an open position was closed.
type CloseReason int

const (
	CloseNone CloseReason = iota
	CloseStopLoss
	CloseTakeProfit
	CloseTrailingStop
)

func (r CloseReason) String() string {
	switch r {
	case CloseStopLoss:
		return "STOP_LOSS"
	case CloseTakeProfit:
		return "TAKE_PROFIT"
	case CloseTrailingStop:
		return "TRAILING_STOP"
	default:
		return "NONE"
	}
}

// Position is one risk-sized trade moving through the state machine.
type Position struct {
	ID            string
	Symbol        string
	Side          types.Side
	Entry         float64
	Quantity      float64
	Stop          float64
	Target        float64
	OpenedAt      time.Time
	Status        PositionStatus
	ProfitPct     float64
	PeakProfitPct float64
	CloseReason   CloseReason
	OrderID       string
}

// ClosedTrade is the record returned when a position leaves the registry.
type ClosedTrade struct {
	Symbol      string
	Side        types.Side
	Entry       float64
	Exit        float64
	Quantity    float64
	PnL         float64
	ProfitPct   float64
	Reason      CloseReason
	HoldingTime time.Duration
	ClosedAt    time.Time
}

// Admission rejections. All are expected, non-fatal declines.
var (
	ErrDailyLossExceeded   = errors.New("daily loss budget exhausted")
	ErrMaxPositionsReached = errors.New("maximum concurrent positions reached")
	ErrConfidenceTooLow    = errors.New("signal confidence below engine minimum")
	ErrDegenerateStop      = errors.New("stop distance yields non-positive position size")
)

// ExecutionError wraps a failed order placement. No position state survives
// an execution failure.
type ExecutionError struct {
	Symbol string
	Err    error
}

func (e *ExecutionError) Error() string {
	return "order execution failed for " + e.Symbol + ": " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
