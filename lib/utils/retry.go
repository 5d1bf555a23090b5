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

package utils

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
)

// Jitter applies random jitter to a duration. Must be safe for
// concurrent use.
type Jitter func(time.Duration) time.Duration

// NewFullJitter returns a jitter on the range [0,n). Used to spread the
// additive component of retry backoff.
func NewFullJitter() Jitter {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(d time.Duration) time.Duration {
		if d < 1 {
			return 0
		}
		mu.Lock()
		defer mu.Unlock()
		return time.Duration(rng.Int63n(int64(d)))
	}
}

// ExponentialConfig configures an Exponential retry.
type ExponentialConfig struct {
	// Base is the first delay and the unit of the additive jitter.
	Base time.Duration
	// Cap bounds any single delay.
	Cap time.Duration
	// Jitter is added on the range [0,Base). Optional.
	Jitter Jitter
	// Clock overrides time in tests.
	Clock clockwork.Clock
}

// CheckAndSetDefaults validates the config.
func (c *ExponentialConfig) CheckAndSetDefaults() error {
	if c.Base <= 0 {
		return trace.BadParameter("missing parameter Base")
	}
	if c.Cap <= 0 {
		return trace.BadParameter("missing parameter Cap")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// NewExponential returns an exponential backoff calculator:
// delay(n) = Base * 2^n + jitter([0,Base)), capped at Cap.
func NewExponential(cfg ExponentialConfig) (*Exponential, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Exponential{ExponentialConfig: cfg}, nil
}

// Exponential computes capped exponential backoff delays. Not safe for
// concurrent use; each retry loop owns its own instance.
type Exponential struct {
	ExponentialConfig
	attempt int
}

// Reset rewinds the attempt counter.
func (r *Exponential) Reset() {
	r.attempt = 0
}

// Inc records a completed attempt.
func (r *Exponential) Inc() {
	r.attempt++
}

// Attempt returns the zero-based attempt counter.
func (r *Exponential) Attempt() int {
	return r.attempt
}

// Duration returns the delay before the next attempt.
func (r *Exponential) Duration() time.Duration {
	d := r.Base << uint(r.attempt)
	// Guard against shift overflow for absurd attempt counts.
	if d <= 0 || d > r.Cap {
		d = r.Cap
	}
	if r.Jitter != nil {
		d += r.Jitter(r.Base)
	}
	if d > r.Cap {
		d = r.Cap
	}
	return d
}

// After returns a channel that fires after Duration.
func (r *Exponential) After() <-chan time.Time {
	return r.Clock.After(r.Duration())
}
