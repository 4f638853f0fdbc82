package safety

import (
	"fmt"
	"sync"
	"time"
)

// CircuitBreakerState represents the state of a circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold uint32        // consecutive failures before opening
	SuccessThreshold uint32        // successes to close from half-open
	Timeout          time.Duration // wait before probing again
}

// CircuitBreaker trips after repeated execution failures so a broken venue
// does not eat every admission attempt.
type CircuitBreaker struct {
	config        CircuitBreakerConfig
	state         CircuitBreakerState
	failures      uint32
	successes     uint32
	nextAttempt   time.Time
	mutex         sync.Mutex
	name          string
	onStateChange func(from, to CircuitBreakerState)
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 2
	}
	if config.Timeout == 0 {
		config.Timeout = 2 * time.Minute
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		name:   name,
	}
}

// SetStateChangeCallback registers a callback for state transitions.
func (cb *CircuitBreaker) SetStateChangeCallback(callback func(from, to CircuitBreakerState)) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.onStateChange = callback
}

// Call executes fn with circuit breaker protection.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return fmt.Errorf("circuit breaker %s is open", cb.name)
	}

	err := fn()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().After(cb.nextAttempt) {
			cb.transition(StateHalfOpen)
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.successes = 0

	if cb.state == StateHalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.nextAttempt = time.Now().Add(cb.config.Timeout)
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.successes = 0
			cb.transition(StateClosed)
		}
	}
}

// transition switches state while the mutex is held.
func (cb *CircuitBreaker) transition(to CircuitBreakerState) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.onStateChange != nil {
		go cb.onStateChange(from, to)
	}
}
