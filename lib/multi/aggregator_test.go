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

package multi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func TestNormalizeResources(t *testing.T) {
	t.Parallel()

	got, err := NormalizeResources([]string{" Jobs ", "APPS", "jobs", "", "apps"})
	require.NoError(t, err)
	require.Equal(t, []string{"jobs", "apps"}, got)

	_, err = NormalizeResources([]string{"jobs", "nonsense"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "saved-searches")

	_, err = NormalizeResources([]string{" ", ""})
	require.Error(t, err)
}

func TestNormalizeProfiles(t *testing.T) {
	t.Parallel()

	// Case preserved, duplicates collapsed case-insensitively, first
	// occurrence wins.
	got := NormalizeProfiles([]string{" DEV ", " dev ", "prod", "", "PROD"})
	require.Equal(t, []string{"DEV", "prod"}, got)
}

func mockSplunkd(t *testing.T, jobTotal int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/search/jobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"entry":[{"name":"sid1","content":{}}],"paging":{"total":` +
			strconv.Itoa(jobTotal) + `}}`))
		require.NoError(t, err)
	})
	mux.HandleFunc("/services/apps/local", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, err := w.Write([]byte(`{"messages":[{"type":"ERROR","text":"insufficient permissions"}]}`))
		require.NoError(t, err)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testBuilder(t *testing.T, servers map[string]*httptest.Server) ClientBuilder {
	t.Helper()
	return func(ctx context.Context, profile string) (*client.Client, error) {
		srv, ok := servers[profile]
		if !ok {
			return nil, trace.NotFound("profile %q not found", profile)
		}
		return client.New(client.Config{
			BaseURL:    srv.URL,
			Auth:       client.NewAPITokenAuth(secret.New("test")),
			MaxRetries: 1,
			Timeout:    5 * time.Second,
		})
	}
}

func TestPartialFailureIsIsolated(t *testing.T) {
	t.Parallel()

	servers := map[string]*httptest.Server{
		"dev":  mockSplunkd(t, 1),
		"prod": mockSplunkd(t, 2),
	}
	agg, err := New(Config{Builder: testBuilder(t, servers)})
	require.NoError(t, err)

	report, err := agg.Run(context.Background(), []string{"dev", "prod", "ghost"}, []string{"jobs", "apps"})
	require.NoError(t, err)
	require.Len(t, report.Profiles, 3)

	// Timestamp is RFC3339.
	_, err = time.Parse(time.RFC3339, report.Timestamp)
	require.NoError(t, err)

	byName := map[string]ProfileResult{}
	for _, p := range report.Profiles {
		byName[p.Profile] = p
	}

	// Both reachable profiles report jobs and carry a per-resource error
	// for the forbidden apps endpoint; neither aborts the other.
	for _, name := range []string{"dev", "prod"} {
		p := byName[name]
		require.Empty(t, p.Error, "profile %s", name)
		require.NotEmpty(t, p.BaseURL)
		require.Len(t, p.Summaries, 2)
		require.Equal(t, "jobs", p.Summaries[0].Resource)
		require.Empty(t, p.Summaries[0].Error)
		require.Equal(t, "apps", p.Summaries[1].Resource)
		require.NotEmpty(t, p.Summaries[1].Error)
	}
	require.Equal(t, 1, byName["dev"].Summaries[0].Count)
	require.Equal(t, 2, byName["prod"].Summaries[0].Count)

	// The unknown profile reports a build error and nothing else.
	ghost := byName["ghost"]
	require.NotEmpty(t, ghost.Error)
	require.Empty(t, ghost.Summaries)
}

func TestRunNeedsProfiles(t *testing.T) {
	t.Parallel()

	agg, err := New(Config{Builder: testBuilder(t, nil)})
	require.NoError(t, err)
	_, err = agg.Run(context.Background(), nil, []string{"jobs"})
	require.Error(t, err)
}
