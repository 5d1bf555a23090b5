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

package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrySendIsLossy(t *testing.T) {
	t.Parallel()

	q := NewActionQueue(2)
	require.True(t, q.TrySend(Tick{}))
	require.True(t, q.TrySend(Tick{}))

	// Full queue: ticks are dropped, not blocked on.
	require.False(t, q.TrySend(Tick{}))
	require.Equal(t, 2, q.Len())
}

func TestSendBlocksUntilDrained(t *testing.T) {
	t.Parallel()

	q := NewActionQueue(1)
	require.NoError(t, q.Send(context.Background(), Quit{}))

	sent := make(chan error, 1)
	go func() {
		sent <- q.Send(context.Background(), Quit{})
	}()

	select {
	case err := <-sent:
		t.Fatalf("send returned before the queue drained: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := q.Recv()
	require.True(t, ok)
	require.NoError(t, <-sent)
}

func TestSendHonorsCancellation(t *testing.T) {
	t.Parallel()

	q := NewActionQueue(1)
	require.NoError(t, q.Send(context.Background(), Quit{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, q.Send(ctx, Quit{}), context.Canceled)
}

func TestQueueCloseDrains(t *testing.T) {
	t.Parallel()

	q := NewActionQueue(4)
	require.True(t, q.TrySend(Notify{Text: "one"}))
	require.True(t, q.TrySend(Notify{Text: "two"}))
	q.Close()

	a, ok := q.Recv()
	require.True(t, ok)
	require.Equal(t, "one", a.(Notify).Text)
	_, ok = q.Recv()
	require.True(t, ok)
	_, ok = q.Recv()
	require.False(t, ok)
}
