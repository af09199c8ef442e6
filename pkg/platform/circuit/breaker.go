// Package circuit guards calls to an optional backend such as a cache.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	// HalfOpen admits a single probe after the cooldown.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Transition reports whether a Success or Failure call changed the state in a
// way callers usually log.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Recovered
)

// Breaker opens after a run of consecutive failures and stays open for the
// cooldown. The first Allow after the cooldown becomes the probe: its outcome
// either closes the breaker or restarts the cooldown.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker (default 5).
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long the breaker stays open before probing (default 5s).
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: 5,
		cooldown:  5 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether the guarded call should be attempted.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = HalfOpen
		return true
	default:
		// a probe is already in flight
		return false
	}
}

func (b *Breaker) Success() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	if b.state == Closed {
		return NoChange
	}
	b.state = Closed
	return Recovered
}

func (b *Breaker) Failure() Transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case HalfOpen:
		b.state = Open
		b.openedAt = b.now()
		return NoChange
	case Open:
		return NoChange
	}
	b.failures++
	if b.failures < b.threshold {
		return NoChange
	}
	b.state = Open
	b.openedAt = b.now()
	return Opened
}
