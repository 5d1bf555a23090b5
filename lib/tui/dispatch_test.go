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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func newTestDispatcher(t *testing.T, handler http.Handler) (*Dispatcher, *ActionQueue) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clt, err := client.New(client.Config{
		BaseURL:    srv.URL,
		Auth:       client.NewAPITokenAuth(secret.New("tok")),
		MaxRetries: 1,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	queue := NewActionQueue(64)
	d, err := NewDispatcher(DispatcherConfig{Client: clt, Queue: queue})
	require.NoError(t, err)
	return d, queue
}

// drainUntil pulls actions until one matches, failing after the rest of
// the queue is exhausted for too long.
func drainUntil(t *testing.T, queue *ActionQueue, match func(Action) bool) Action {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		got := make(chan Action, 1)
		go func() {
			if a, ok := queue.Recv(); ok {
				got <- a
			}
		}()
		select {
		case a := <-got:
			if match(a) {
				return a
			}
		case <-deadline:
			t.Fatal("expected action never arrived")
		}
	}
}

func TestLoadListEmitsTypedCompletion(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/data/indexes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entry":[{"name":"main","content":{"totalEventCount":42}}],"paging":{"total":7}}`))
	})
	d, queue := newTestDispatcher(t, mux)

	d.Dispatch(context.Background(), []Effect{LoadList{Screen: ScreenIndexes}})

	loaded := drainUntil(t, queue, func(a Action) bool {
		_, ok := a.(ResourceLoaded)
		return ok
	}).(ResourceLoaded)
	require.Equal(t, ScreenIndexes, loaded.Screen)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, 7, loaded.Total)
	require.NoError(t, d.Wait(context.Background()))
}

func TestLoadListErrorBecomesToast(t *testing.T) {
	t.Parallel()

	d, queue := newTestDispatcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"messages":[{"type":"ERROR","text":"insufficient permissions"}]}`))
	}))

	d.Dispatch(context.Background(), []Effect{LoadList{Screen: ScreenUsers}})

	notify := drainUntil(t, queue, func(a Action) bool {
		_, ok := a.(Notify)
		return ok
	}).(Notify)
	require.Equal(t, NotifyError, notify.Level)
	require.Contains(t, notify.Text, "insufficient permissions")
}

func TestDeleteRefreshesList(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/data/indexes/old", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/services/data/indexes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entry":[],"paging":{"total":0}}`))
	})
	d, queue := newTestDispatcher(t, mux)

	d.Dispatch(context.Background(), []Effect{DeleteResource{Screen: ScreenIndexes, Name: "old"}})

	// Success toast first, then the refreshed page.
	notify := drainUntil(t, queue, func(a Action) bool {
		_, ok := a.(Notify)
		return ok
	}).(Notify)
	require.Equal(t, NotifySuccess, notify.Level)

	loaded := drainUntil(t, queue, func(a Action) bool {
		_, ok := a.(ResourceLoaded)
		return ok
	}).(ResourceLoaded)
	require.Zero(t, loaded.Offset)
}

func TestStaleValidationNeverFires(t *testing.T) {
	t.Parallel()

	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/services/search/parser", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[]}`))
	})
	d, queue := newTestDispatcher(t, mux)

	ctx := context.Background()
	// Two rapid validations: the first is superseded inside the
	// debounce window and must never hit the parser. The short sleep
	// orders the goroutines without outlasting the debounce.
	d.Dispatch(ctx, []Effect{ValidateQuery{Query: "index=m"}})
	time.Sleep(50 * time.Millisecond)
	d.Dispatch(ctx, []Effect{ValidateQuery{Query: "index=main"}})

	result := drainUntil(t, queue, func(a Action) bool {
		_, ok := a.(ValidateResult)
		return ok
	}).(ValidateResult)
	require.Equal(t, "index=main", result.Query)
	require.NoError(t, d.Wait(ctx))
	require.Equal(t, 1, calls)
	require.Zero(t, queue.Len(), "superseded validation emitted nothing")
}
