package notifications

import "fmt"

// EventKind classifies a lifecycle event worth telling a human about.
type EventKind string

const (
	EventSignalAccepted EventKind = "SIGNAL_ACCEPTED"
	EventPositionOpened EventKind = "POSITION_OPENED"
	EventPositionClosed EventKind = "POSITION_CLOSED"
	EventTradingHalted  EventKind = "TRADING_HALTED"
	EventError          EventKind = "ERROR"
)

// Event is one notification payload.
type Event struct {
	Kind    EventKind
	Symbol  string
	Message string
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Symbol, e.Message)
}

// Notifier delivers lifecycle events to an external channel.
type Notifier interface {
	Notify(event Event) error
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) error { return nil }
