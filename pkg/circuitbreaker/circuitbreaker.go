// Package circuitbreaker stops calling a failing downstream service for a
// cool-down period, then probes it again before resuming normal traffic.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects every call until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets a bounded number of probe calls through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrOpen is returned while the breaker rejects calls.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrProbeLimit is returned when every half-open probe slot is taken.
	ErrProbeLimit = errors.New("circuit breaker probe limit reached")
)

// Settings configures a Breaker. Zero fields take the defaults of
// DefaultSettings.
type Settings struct {
	Name string

	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// SuccessThreshold consecutive probe successes close it again.
	SuccessThreshold int
	// CoolDown is how long the breaker stays open.
	CoolDown time.Duration
	// MaxProbes bounds concurrent calls while half-open.
	MaxProbes int

	// OnStateChange is called with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(name string, from, to State)
	// IsFailure decides which errors count. Nil counts every error except
	// context cancellation.
	IsFailure func(error) bool

	// Now is the clock. Nil uses time.Now.
	Now func() time.Time
}

// DefaultSettings returns the settings used for unset fields.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         30 * time.Second,
		MaxProbes:        1,
	}
}

// Counts holds the counters of the current state.
type Counts struct {
	Requests             int
	TotalSuccesses       int
	TotalFailures        int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probes   int
}

// New creates a closed breaker.
func New(settings Settings) *Breaker {
	def := DefaultSettings(settings.Name)
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = def.FailureThreshold
	}
	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = def.SuccessThreshold
	}
	if settings.CoolDown <= 0 {
		settings.CoolDown = def.CoolDown
	}
	if settings.MaxProbes <= 0 {
		settings.MaxProbes = def.MaxProbes
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{settings: settings, state: StateClosed}
}

// Execute runs fn unless the breaker rejects the call, and records the
// outcome.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.settings.Now().Sub(b.openedAt) < b.settings.CoolDown {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
		b.probes = 1
		return nil
	case StateHalfOpen:
		if b.probes >= b.settings.MaxProbes {
			return ErrProbeLimit
		}
		b.probes++
		return nil
	default:
		return ErrOpen
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.counts.Requests++
	if !b.isFailure(err) {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen {
			if b.probes > 0 {
				b.probes--
			}
			if b.counts.ConsecutiveSuccesses >= b.settings.SuccessThreshold {
				b.setState(StateClosed)
			}
		}
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	switch b.state {
	case StateClosed:
		if b.counts.ConsecutiveFailures >= b.settings.FailureThreshold {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	}
}

func (b *Breaker) isFailure(err error) bool {
	if err == nil {
		return false
	}
	if b.settings.IsFailure != nil {
		return b.settings.IsFailure(err)
	}
	return !errors.Is(err, context.Canceled)
}

func (b *Breaker) open() {
	b.openedAt = b.settings.Now()
	b.setState(StateOpen)
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.counts.ConsecutiveSuccesses = 0
	b.counts.ConsecutiveFailures = 0
	b.probes = 0
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.settings.Name, from, to)
	}
}

// State returns the current state. An open breaker whose cool-down has
// elapsed still reports open until the next call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts returns a snapshot of the counters.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Reset closes the breaker and clears the counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.counts = Counts{}
	b.probes = 0
}

// Name returns the configured name.
func (b *Breaker) Name() string {
	return b.settings.Name
}

// ─────────────────────────────────────────────────────────────────────────────
// Presets
// ─────────────────────────────────────────────────────────────────────────────

// NotifierSettings guards notification delivery. Notifications are
// fire-and-forget, so the breaker opens early and recovers quickly.
func NotifierSettings(onStateChange func(name string, from, to State)) Settings {
	return Settings{
		Name:             "notifier",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		CoolDown:         30 * time.Second,
		MaxProbes:        1,
		OnStateChange:    onStateChange,
	}
}

// IdentitySettings guards the identity system that opens person tickets.
func IdentitySettings(onStateChange func(name string, from, to State)) Settings {
	return Settings{
		Name:             "identity",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CoolDown:         time.Minute,
		MaxProbes:        1,
		OnStateChange:    onStateChange,
	}
}
