// Package resilience guards calls to remote services with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the circuit state.
type State string

const (
	StateClosed   State = "CLOSED"    // calls pass through
	StateOpen     State = "OPEN"      // calls are rejected
	StateHalfOpen State = "HALF_OPEN" // probing for recovery
)

// ErrOpen is returned without calling through while the circuit is open.
var ErrOpen = errors.New("circuit breaker is open")

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// Consecutive failures that open the circuit.
	FailureThreshold int
	// Successes in half-open state that close it again.
	SuccessThreshold int
	// How long the circuit stays open before a probe is allowed.
	Cooldown time.Duration
	// IsFailure decides which errors count against the circuit. Nil
	// counts every non-nil error.
	IsFailure func(error) bool
}

// DefaultBreakerConfig returns the defaults used for quote lookups.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Cooldown:         30 * time.Second,
	}
}

// Breaker is a consecutive-failure circuit breaker. It is safe for
// concurrent use.
type Breaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time

	stats Stats
}

// Stats counts calls seen by a breaker.
type Stats struct {
	Name     string `json:"name"`
	State    State  `json:"state"`
	Calls    int64  `json:"calls"`
	Failures int64  `json:"failures"`
	Rejected int64  `json:"rejected"`
}

// NewBreaker creates a closed breaker. Non-positive thresholds take the
// defaults.
func NewBreaker(name string, config BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	return &Breaker{
		name:   name,
		config: config,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Do runs fn unless the circuit is open. A cancelled context is returned
// as is and does not count as a failure.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		return err
	}
	b.record(err)
	return err
}

// Call is Do for functions that return a value.
func Call[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.config.Cooldown {
			b.stats.Rejected++
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	b.stats.Calls++
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil
	if failed && b.config.IsFailure != nil {
		failed = b.config.IsFailure(err)
	}

	if !failed {
		switch b.state {
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.config.SuccessThreshold {
				b.transition(StateClosed)
			}
		case StateClosed:
			b.failures = 0
		}
		return
	}

	b.stats.Failures++
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(s State) {
	b.state = s
	b.failures = 0
	b.successes = 0
	if s == StateOpen {
		b.openedAt = b.now()
	}
}

// State returns the current state. An open circuit whose cooldown has
// passed still reports open until the next call probes it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of the breaker's counters.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Name = b.name
	s.State = b.state
	return s
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
}
