// splunkctl
// Copyright (C) 2025  splunkctl authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package breaker implements a per-route circuit breaker that fails fast
// once an endpoint keeps failing, instead of piling more requests onto it.
package breaker

import (
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
)

// State is the current position of the circuit.
type State int

const (
	// StateClosed passes all requests through.
	StateClosed State = iota
	// StateOpen fails fast until the open window elapses.
	StateOpen
	// StateHalfOpen lets a single probe through, then a limited number
	// of requests until the circuit closes or re-opens.
	StateHalfOpen
)

// String returns the state name.
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

// ErrStateOpen is returned when the circuit rejects a call without
// issuing it. Callers match it with trace.IsConnectionProblem or errors.Is.
var ErrStateOpen = trace.ConnectionProblem(nil, "circuit breaker is open")

// Config configures a Breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the circuit.
	FailureThreshold int
	// OpenWindow is the initial fail-fast duration.
	OpenWindow time.Duration
	// OpenWindowCap bounds the window as it doubles on repeated trips.
	OpenWindowCap time.Duration
	// RecoverySuccesses is the number of successes required after the
	// half-open probe before the circuit closes.
	RecoverySuccesses int
	// Clock overrides time in tests.
	Clock clockwork.Clock
}

// CheckAndSetDefaults validates the config.
func (c *Config) CheckAndSetDefaults() error {
	if c.FailureThreshold <= 0 {
		return trace.BadParameter("missing parameter FailureThreshold")
	}
	if c.OpenWindow <= 0 {
		return trace.BadParameter("missing parameter OpenWindow")
	}
	if c.OpenWindowCap < c.OpenWindow {
		c.OpenWindowCap = c.OpenWindow
	}
	if c.RecoverySuccesses <= 0 {
		c.RecoverySuccesses = 1
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Breaker guards a single route template. All methods are safe for
// concurrent use; the internal critical sections are short and never
// held across I/O.
type Breaker struct {
	cfg Config

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	recoverySuccesses   int
	openUntil           time.Time
	window              time.Duration
	probeInFlight       bool
}

// New creates a Breaker in the closed state.
func New(cfg Config) (*Breaker, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Breaker{cfg: cfg, window: cfg.OpenWindow}, nil
}

// State returns the current state, advancing Open to HalfOpen if the
// window has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked()
	return b.state
}

// Allow reports whether a request may proceed. Callers that get true
// must report the outcome through Success or Failure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked()
	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		return trace.Wrap(ErrStateOpen)
	case StateHalfOpen:
		if b.probeInFlight {
			return trace.Wrap(ErrStateOpen)
		}
		b.probeInFlight = true
		return nil
	}
	return nil
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		b.consecutiveFailures = 0
	case StateHalfOpen:
		b.probeInFlight = false
		b.recoverySuccesses++
		// The probe plus RecoverySuccesses further successes close
		// the circuit and reset the window.
		if b.recoverySuccesses > b.cfg.RecoverySuccesses {
			b.state = StateClosed
			b.consecutiveFailures = 0
			b.recoverySuccesses = 0
			b.window = b.cfg.OpenWindow
		}
	}
}

// Failure records a failed call of a retryable kind.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.tripLocked()
		}
	case StateHalfOpen:
		b.probeInFlight = false
		b.window *= 2
		if b.window > b.cfg.OpenWindowCap {
			b.window = b.cfg.OpenWindowCap
		}
		b.tripLocked()
	}
}

// tripLocked moves the breaker to Open for the current window.
func (b *Breaker) tripLocked() {
	b.state = StateOpen
	b.openUntil = b.cfg.Clock.Now().Add(b.window)
	b.recoverySuccesses = 0
}

// advanceLocked transitions Open to HalfOpen once the window elapses.
func (b *Breaker) advanceLocked() {
	if b.state == StateOpen && !b.cfg.Clock.Now().Before(b.openUntil) {
		b.state = StateHalfOpen
		b.probeInFlight = false
		b.recoverySuccesses = 0
	}
}

// Registry keys breakers by route template so all concurrent callers of
// the same endpoint family share circuit state.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates a Registry stamping each breaker with cfg.
func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Registry{cfg: cfg, breakers: make(map[string]*Breaker)}, nil
}

// Get returns the breaker for a route template, creating it on first use.
func (r *Registry) Get(route string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[route]
	if !ok {
		b = &Breaker{cfg: r.cfg, window: r.cfg.OpenWindow}
		r.breakers[route] = b
	}
	return b
}
