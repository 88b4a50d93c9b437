// Package breaker implements a small circuit breaker for flaky external
// dependencies. After enough consecutive failures the circuit opens and
// calls are refused until a cooldown elapses, at which point the next
// call is allowed through as a probe.
package breaker

import (
	"sync"
	"time"
)

// Defaults match the guard used around the hosted classifier and the
// FX providers.
const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 30 * time.Second
)

// CircuitBreaker tracks consecutive failures for one external dependency.
// The zero value is not usable; construct with New.
type CircuitBreaker struct {
	lastFailure time.Time
	now         func() time.Time
	threshold   int
	cooldown    time.Duration
	failures    int
	open        bool
	mu          sync.Mutex
}

// New creates a breaker with the given threshold and cooldown.
// Non-positive arguments fall back to the defaults.
func New(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. While the circuit is open it
// returns false until the cooldown has elapsed; the first call after
// that is allowed as a probe.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.now().Sub(b.lastFailure) >= b.cooldown {
		return true
	}
	return false
}

// Success records a successful call and closes the circuit.
func (b *CircuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.open = false
}

// Failure records a failed call, opening the circuit once the failure
// threshold is reached.
func (b *CircuitBreaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	if b.failures >= b.threshold {
		b.open = true
	}
}

// Open reports whether the circuit is currently open.
func (b *CircuitBreaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Failures returns the current consecutive failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset restores the breaker to its initial closed state.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
	b.lastFailure = time.Time{}
}
