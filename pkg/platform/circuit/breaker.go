// Package circuit implements a counting circuit breaker for remote
// dependencies. Failures past a threshold open the circuit; a run of
// successes closes it again.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
)

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 2
	defaultProbeInterval    = 30 * time.Second
)

// Change reports a state transition caused by a recorded outcome. Both
// fields are false when the outcome left the breaker where it was.
type Change struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive outcomes for one named dependency. All methods
// are safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	successThreshold int
	probeInterval    time.Duration

	state     State
	failures  int
	successes int
	lastProbe time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes close an open
// circuit.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithProbeInterval sets how often Allow lets a call through while the
// circuit is open.
func WithProbeInterval(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.probeInterval = d
		}
	}
}

// New creates a closed Breaker for the named dependency.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
		probeInterval:    defaultProbeInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateOpen
}

// Allow reports whether a call may proceed. A closed circuit always allows;
// an open circuit allows one probe per probe interval so the breaker can
// observe recovery.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	if time.Since(b.lastProbe) >= b.probeInterval {
		b.lastProbe = time.Now()
		return true
	}
	return false
}

// RecordFailure notes a failed call. The first return reports whether
// callers should stop using the dependency.
func (b *Breaker) RecordFailure() (bool, Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		return true, Change{}
	}
	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		b.lastProbe = time.Now()
		return true, Change{Opened: true}
	}
	return false, Change{}
}

// RecordSuccess notes a successful call. The first return reports whether
// the dependency is usable again.
func (b *Breaker) RecordSuccess() (bool, Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, Change{}
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		return true, Change{Closed: true}
	}
	return false, Change{}
}

// Reset forces the circuit closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
