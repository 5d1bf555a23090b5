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

	"github.com/splunkctl/splunkctl/lib/defaults"
)

// ActionQueue is the bounded inbound channel of the event loop. Input
// events and side-effect completions use the blocking Send and are
// never dropped; mouse movement and timer ticks use the lossy TrySend
// because a dropped tick is recovered by the next one.
type ActionQueue struct {
	ch chan Action
}

// NewActionQueue builds a queue. Zero capacity means the default.
func NewActionQueue(capacity int) *ActionQueue {
	if capacity <= 0 {
		capacity = defaults.ActionQueueCapacity
	}
	return &ActionQueue{ch: make(chan Action, capacity)}
}

// Send blocks until the action is enqueued or ctx is cancelled. Used
// for key events, resizes and side-effect completions: a user key never
// fails to reach the reducer while the process is alive.
func (q *ActionQueue) Send(ctx context.Context, action Action) error {
	select {
	case q.ch <- action:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues without blocking and reports whether the action was
// accepted. Used for mouse events and ticks.
func (q *ActionQueue) TrySend(action Action) bool {
	select {
	case q.ch <- action:
		return true
	default:
		return false
	}
}

// Recv dequeues the next action. ok is false after Close once the
// queue drains.
func (q *ActionQueue) Recv() (action Action, ok bool) {
	action, ok = <-q.ch
	return action, ok
}

// Len reports the number of queued actions.
func (q *ActionQueue) Len() int {
	return len(q.ch)
}

// Close stops the queue. Pending actions remain receivable.
func (q *ActionQueue) Close() {
	close(q.ch)
}
