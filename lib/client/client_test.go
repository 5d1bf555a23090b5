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

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/secret"
)

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:    srv.URL,
		Auth:       NewAPITokenAuth(secret.New("test-token")),
		Timeout:    10 * time.Second,
		MaxRetries: 2,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	clt, err := New(cfg)
	require.NoError(t, err)
	return clt, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func TestEnvelopeNameWins(t *testing.T) {
	t.Parallel()

	// The content object claims a different name than the envelope; the
	// envelope identity must win.
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "json", r.URL.Query().Get("output_mode"))
		writeJSON(t, w, http.StatusOK, `{
			"entry": [
				{"name": "main", "content": {"name": "stale", "totalEventCount": 42}},
				{"name": "_internal", "content": {}}
			],
			"paging": {"total": 2}
		}`)
	}))

	indexes, total, err := clt.ListIndexes(context.Background(), Page{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, indexes, 2)
	require.Equal(t, "main", indexes[0].Name)
	require.Equal(t, "_internal", indexes[1].Name)
	require.NotNil(t, indexes[0].TotalEventCount)
	require.Equal(t, int64(42), *indexes[0].TotalEventCount)
}

func TestRetriesAreBounded(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusServiceUnavailable, `{"messages":[{"type":"ERROR","text":"shutting down"}]}`)
	}))

	_, _, err := clt.ListIndexes(context.Background(), Page{})
	require.Error(t, err)
	require.True(t, IsServiceUnavailable(err))
	// Initial attempt plus MaxRetries, never more.
	require.Equal(t, int32(3), calls.Load())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	require.Equal(t, "shutting down", apiErr.Message)
}

func TestNoRetryOnClientError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusBadRequest, `{"messages":[{"type":"ERROR","text":"bad index name"}]}`)
	}))

	_, err := clt.CreateIndex(context.Background(), "bad name", CreateIndexParams{})
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSessionReloginAfter401(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/services/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "admin", r.PostForm.Get("username"))
		require.Equal(t, "hunter22", r.PostForm.Get("password"))
		n := logins.Add(1)
		writeJSON(t, w, http.StatusOK, fmt.Sprintf(`{"sessionKey":"tok%d"}`, n))
	})
	mux.HandleFunc("/services/data/indexes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer tok1":
			// Session expired server-side.
			writeJSON(t, w, http.StatusUnauthorized, `{"messages":[{"type":"ERROR","text":"call not properly authenticated"}]}`)
		case "Bearer tok2":
			writeJSON(t, w, http.StatusOK, `{"entry":[{"name":"main","content":{}}],"paging":{"total":1}}`)
		default:
			writeJSON(t, w, http.StatusUnauthorized, `{}`)
		}
	})

	clt, _ := newTestClient(t, mux, func(cfg *Config) {
		cfg.Auth = NewSessionAuth("admin", secret.New("hunter22"))
	})

	indexes, _, err := clt.ListIndexes(context.Background(), Page{})
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, int32(2), logins.Load())
}

func TestSecond401IsTerminal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusUnauthorized, `{"messages":[{"type":"ERROR","text":"token revoked"}]}`)
	}))

	_, _, err := clt.ListIndexes(context.Background(), Page{})
	require.Error(t, err)
	require.True(t, IsAuthFailed(err))
	// One original attempt, one post-invalidate attempt, no further retries.
	require.Equal(t, int32(2), calls.Load())
}

func TestPathSegmentsStayEncoded(t *testing.T) {
	t.Parallel()

	var gotPath atomic.Value
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.EscapedPath())
		writeJSON(t, w, http.StatusOK, `{}`)
	}))

	// A name holding a slash must travel as one path segment, not as a
	// deeper path.
	require.NoError(t, clt.DeleteUser(context.Background(), "weird/user name"))
	require.Equal(t, "/services/authentication/users/weird%2Fuser%20name", gotPath.Load())
}

func TestEncodePathSegment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"plain-name_1.0", "plain-name_1.0"},
		{"a/b", "a%2Fb"},
		{"x y", "x%20y"},
		{"name~1", "name%7E1"},
		{`q"uo'te`, "q%22uo%27te"},
		{"100%", "100%25"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, EncodePathSegment(tc.in), "segment %q", tc.in)
	}
}

func TestRetryAfterReplacesBackoff(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "5")
			writeJSON(t, w, http.StatusTooManyRequests, `{}`)
			return
		}
		writeJSON(t, w, http.StatusOK, `{"entry":[{"name":"main","content":{}}],"paging":{"total":1}}`)
	}), func(cfg *Config) {
		cfg.Clock = clock
	})

	done := make(chan error, 1)
	go func() {
		_, _, err := clt.ListIndexes(context.Background(), Page{})
		done <- err
	}()

	// The only sleep is the Retry-After wait itself; the retry fires as
	// soon as it elapses, with no backoff delay stacked on top.
	clock.BlockUntil(1)
	clock.Advance(5 * time.Second)
	require.NoError(t, <-done)
	require.Equal(t, int32(2), calls.Load())
}

func TestRetryAfterBeyondDeadlineFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "120")
		writeJSON(t, w, http.StatusTooManyRequests, `{"messages":[{"type":"ERROR","text":"search quota exceeded"}]}`)
	}), func(cfg *Config) {
		cfg.Timeout = 2 * time.Second
	})

	start := time.Now()
	_, _, err := clt.ListIndexes(context.Background(), Page{})
	require.Error(t, err)
	require.True(t, IsRateLimited(err))
	// The server told us to come back after the deadline; no point waiting.
	require.Equal(t, int32(1), calls.Load())
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestRetryAfterIsHonored(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			writeJSON(t, w, http.StatusTooManyRequests, `{}`)
			return
		}
		writeJSON(t, w, http.StatusOK, `{"entry":[{"name":"main","content":{}}],"paging":{"total":1}}`)
	}))

	start := time.Now()
	indexes, _, err := clt.ListIndexes(context.Background(), Page{})
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, int32(2), calls.Load())
	require.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestTransportErrorsAreRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the connection mid-flight.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		writeJSON(t, w, http.StatusOK, `{"entry":[{"name":"main","content":{}}],"paging":{"total":1}}`)
	}))
	t.Cleanup(srv.Close)

	clt, err := New(Config{
		BaseURL: srv.URL,
		Auth:    NewAPITokenAuth(secret.New("test-token")),
	})
	require.NoError(t, err)

	indexes, _, err := clt.ListIndexes(context.Background(), Page{})
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestEmptyEnvelopeIsNotFound(t *testing.T) {
	t.Parallel()

	clt, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"entry":[],"paging":{"total":0}}`)
	}))

	_, err := clt.GetIndex(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
}

func TestNormalizeRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want string
	}{
		{"/services/data/indexes", "/services/data/indexes"},
		{"/services/data/indexes/main", "/services/data/indexes/main"},
		{"/services/authentication/users/weird%2Fname", "/services/authentication/users/{name}"},
		{"/services/saved/searches/Errors%20last%20hour/dispatch", "/services/saved/searches/{name}/dispatch"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeRoute(tc.path), "path %q", tc.path)
	}
}

func TestConfigAggregationIsolatesFailures(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/configs/conf-props", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{
			"entry": [{"name": "syslog", "content": {"TRANSFORMS": "t1", "eai:appName": "search"}}],
			"paging": {"total": 1}
		}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, `{"messages":[{"type":"ERROR","text":"insufficient permissions"}]}`)
	})

	clt, _ := newTestClient(t, mux)
	agg, err := clt.ListAllConfigStanzas(context.Background())
	require.NoError(t, err)

	require.Len(t, agg.Stanzas["props"], 1)
	stanza := agg.Stanzas["props"][0]
	require.Equal(t, "syslog", stanza.Name)
	require.Equal(t, "props", stanza.File)
	require.Equal(t, map[string]string{"TRANSFORMS": "t1"}, stanza.Settings)

	// Every other whitelisted file failed, and each failure is recorded
	// under its own key instead of aborting the walk.
	require.NotEmpty(t, agg.Errors)
	require.NotContains(t, agg.Errors, "props")
	require.True(t, IsForbidden(agg.Errors["transforms"]))
}

func TestHecClient(t *testing.T) {
	t.Parallel()

	var gotAuth, gotChannel atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/services/collector/event", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		gotChannel.Store(r.Header.Get("X-Splunk-Request-Channel"))
		writeJSON(t, w, http.StatusOK, `{"text":"Success","code":0,"ackId":7}`)
	})
	mux.HandleFunc("/services/collector/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"text":"HEC is healthy","code":17}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	hec, err := NewHecClient(HecConfig{
		BaseURL: srv.URL,
		Token:   secret.New("hec-token"),
	})
	require.NoError(t, err)

	resp, err := hec.SendEvent(context.Background(), HecEvent{Event: "hello"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.Code)
	require.NotNil(t, resp.AckID)
	require.Equal(t, int64(7), *resp.AckID)

	// HEC uses the Splunk scheme, not Bearer.
	require.Equal(t, "Splunk hec-token", gotAuth.Load())
	require.NotEmpty(t, gotChannel.Load())

	require.NoError(t, hec.Health(context.Background()))
}

func TestSearchQueryNormalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"index=main error", "search index=main error"},
		{"search index=main", "search index=main"},
		{"| tstats count", "| tstats count"},
		{"  index=_audit  ", "search index=_audit"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, normalizeQuery(tc.in), "query %q", tc.in)
	}
}
