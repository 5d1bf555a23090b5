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

package diag

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func checkByName(t *testing.T, report *Report, name string) Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestRunWithResolveFailure(t *testing.T) {
	t.Parallel()

	report := Run(context.Background(), Params{
		Version:    "1.2.3",
		ResolveErr: trace.BadParameter("no base URL configured"),
	})

	require.Equal(t, "1.2.3", report.Version)
	_, err := time.Parse(time.RFC3339, report.Timestamp)
	require.NoError(t, err)

	require.Equal(t, "failed", checkByName(t, report, "config_load").Status)
	require.Equal(t, "skipped", checkByName(t, report, "auth_strategy").Status)
	require.Equal(t, "skipped", checkByName(t, report, "client_build").Status)
}

func TestRunProbes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/server/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entry":[{"name":"server-info","content":{"version":"9.2.1"}}]}`))
	})
	mux.HandleFunc("/services/server/health/splunkd/details", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entry":[{"name":"splunkd","content":{"health":"green","features":{}}}]}`))
	})
	mux.HandleFunc("/services/kvstore/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"messages":[{"type":"ERROR","text":"kvstore starting"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	clt, err := client.New(client.Config{
		BaseURL:    srv.URL,
		Auth:       client.NewAPITokenAuth(secret.New("tok")),
		MaxRetries: 1,
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)

	report := Run(context.Background(), Params{
		Version: "1.2.3",
		Snapshot: &config.Snapshot{
			BaseURL:    srv.URL,
			APIToken:   secret.New("tok"),
			Timeout:    5 * time.Second,
			MaxRetries: 1,
		},
		Client: clt,
		Probe:  true,
	})

	require.Equal(t, "api_token", report.Config.AuthStrategy)
	require.Equal(t, "ok", checkByName(t, report, "client_build").Status)
	require.Equal(t, "splunkd 9.2.1", checkByName(t, report, "probe_server_info").Detail)
	require.Equal(t, "green", checkByName(t, report, "probe_health").Detail)
	require.NotNil(t, report.HealthOutput)

	// The unhealthy kvstore lands as a partial error, not a run failure.
	require.Equal(t, "failed", checkByName(t, report, "probe_kvstore").Status)
	require.Contains(t, report.PartialErrors, "/services/kvstore/status")
}

func TestBundleIsRedacted(t *testing.T) {
	t.Setenv("SPLUNK_API_TOKEN", "super-secret-token-value")

	report := Run(context.Background(), Params{
		Version: "1.2.3",
		Snapshot: &config.Snapshot{
			BaseURL:  "https://splunk.example.com:8089",
			APIToken: secret.New("super-secret-token-value"),
			Timeout:  time.Second,
		},
	})
	report.PartialErrors = map[string]string{"/services/server/info": "dial tcp: connection refused"}
	report.HealthOutput = &client.HealthCheckOutput{Health: "green"}

	path := filepath.Join(t.TempDir(), "bundle.zip")
	require.NoError(t, WriteBundle(path, report))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token-value")

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { zr.Close() })

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(data)
	}
	require.Contains(t, files, "report.json")
	require.Contains(t, files, "environment.txt")

	// Health output and partial errors are stripped from the bundle copy.
	var bundled Report
	require.NoError(t, json.Unmarshal([]byte(files["report.json"]), &bundled))
	require.Nil(t, bundled.HealthOutput)
	require.Empty(t, bundled.PartialErrors)
	require.Equal(t, "https://splunk.example.com:8089", bundled.Config.BaseURL)

	// Variable names survive, values never do.
	require.Contains(t, files["environment.txt"], "SPLUNK_API_TOKEN="+secret.Redacted)
	require.NotContains(t, files["environment.txt"], "super-secret-token-value")

	// The in-memory report keeps its diagnostics.
	require.NotNil(t, report.HealthOutput)
	require.NotEmpty(t, report.PartialErrors)
}
