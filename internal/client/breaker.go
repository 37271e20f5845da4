package client

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls without touching the server.
	StateOpen
	// StateHalfOpen lets a single probe call decide open or closed.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// ErrCircuitOpen is returned by Execute when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops hammering a server that keeps failing. After
// FailureThreshold consecutive failures it opens and rejects calls
// outright; once RecoveryTimeout has passed it half-opens and lets one
// probe call through. A successful probe closes the breaker, a failed
// one reopens it immediately.
type CircuitBreaker struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time

	now func() time.Time // stubbed in tests
}

// NewCircuitBreaker builds a breaker; non-positive arguments fall back
// to a threshold of 3 failures and a 5 second recovery window.
func NewCircuitBreaker(threshold int, recovery time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if recovery <= 0 {
		recovery = 5 * time.Second
	}
	return &CircuitBreaker{
		FailureThreshold: threshold,
		RecoveryTimeout:  recovery,
		now:              time.Now,
	}
}

// State reports the current state, applying the open to half-open
// transition when the recovery window has elapsed.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *CircuitBreaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.lastFailure) > b.RecoveryTimeout {
		b.state = StateHalfOpen
	}
	return b.state
}

// Failures reports the consecutive failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Execute runs fn under the breaker. While open it returns
// ErrCircuitOpen without invoking fn. A fn error counts as a failure; a
// nil return closes the breaker and resets the count.
func (b *CircuitBreaker) Execute(fn func() error) error {
	b.mu.Lock()
	switch b.stateLocked() {
	case StateOpen:
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	halfOpen := b.state == StateHalfOpen
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = b.now()
		if halfOpen || b.failures >= b.FailureThreshold {
			b.state = StateOpen
		}
		return err
	}
	b.state = StateClosed
	b.failures = 0
	return nil
}
