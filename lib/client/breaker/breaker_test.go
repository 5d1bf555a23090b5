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

package breaker

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T, clock clockwork.Clock) *Breaker {
	t.Helper()
	b, err := New(Config{
		FailureThreshold:  5,
		OpenWindow:        30 * time.Second,
		OpenWindowCap:     5 * time.Minute,
		RecoverySuccesses: 2,
		Clock:             clock,
	})
	require.NoError(t, err)
	return b
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := newTestBreaker(t, clock)

	for range 4 {
		b.Failure()
		require.NoError(t, b.Allow())
		b.Success() // not consumed as probe in closed state
	}

	// Successes reset the consecutive counter, so trip needs five in a row.
	for range 5 {
		require.NoError(t, b.Allow())
		b.Failure()
	}
	require.Equal(t, StateOpen, b.State())
	require.Error(t, b.Allow())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := newTestBreaker(t, clock)

	for range 5 {
		b.Failure()
	}
	require.Equal(t, StateOpen, b.State())

	clock.Advance(30 * time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	// Only one probe is admitted at a time.
	require.NoError(t, b.Allow())
	require.Error(t, b.Allow())
	b.Success()

	// Probe + two further successes close the circuit.
	require.NoError(t, b.Allow())
	b.Success()
	require.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Allow())
	b.Success()
	require.Equal(t, StateClosed, b.State())
}

func TestBreakerReopenDoublesWindow(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b := newTestBreaker(t, clock)

	for range 5 {
		b.Failure()
	}
	clock.Advance(30 * time.Second)
	require.NoError(t, b.Allow())
	b.Failure() // probe fails, window doubles to 60s

	clock.Advance(30 * time.Second)
	require.Equal(t, StateOpen, b.State())
	clock.Advance(30 * time.Second)
	require.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerWindowCap(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	b, err := New(Config{
		FailureThreshold:  1,
		OpenWindow:        4 * time.Minute,
		OpenWindowCap:     5 * time.Minute,
		RecoverySuccesses: 2,
		Clock:             clock,
	})
	require.NoError(t, err)

	b.Failure()
	clock.Advance(4 * time.Minute)
	require.NoError(t, b.Allow())
	b.Failure() // doubled window would be 8m, capped at 5m

	clock.Advance(5 * time.Minute)
	require.Equal(t, StateHalfOpen, b.State())
}

func TestRegistrySharesStatePerRoute(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Config{
		FailureThreshold:  1,
		OpenWindow:        time.Minute,
		RecoverySuccesses: 1,
		Clock:             clockwork.NewFakeClock(),
	})
	require.NoError(t, err)

	a := r.Get("/services/data/indexes")
	b := r.Get("/services/data/indexes")
	require.Same(t, a, b)

	other := r.Get("/services/search/jobs")
	require.NotSame(t, a, other)

	a.Failure()
	require.Error(t, b.Allow())
	require.NoError(t, other.Allow())
}
