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

package common

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/multi"
	"github.com/splunkctl/splunkctl/lib/output"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func testCLIConfig(format string) (*CLIConfig, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &CLIConfig{
		Globals: &GlobalFlags{Format: format},
		Stdout:  out,
		Stderr:  &bytes.Buffer{},
	}, out
}

func TestRenderListTable(t *testing.T) {
	t.Parallel()
	cfg, out := testCLIConfig("table")

	indexes := []client.Index{{Name: "main"}, {Name: "_internal"}}
	require.NoError(t, RenderList(cfg, indexes, 0, 7))

	text := out.String()
	require.Contains(t, text, "main")
	require.Contains(t, text, "_internal")
	// Table mode renders the pagination footer.
	require.Contains(t, text, "Showing 1-2 of 7")
}

func TestRenderListJSON(t *testing.T) {
	t.Parallel()
	cfg, out := testCLIConfig("json")

	indexes := []client.Index{{Name: "main"}}
	require.NoError(t, RenderList(cfg, indexes, 0, 1))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	require.Equal(t, "main", parsed[0]["name"])
}

func TestRenderListRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	cfg, _ := testCLIConfig("yaml")
	require.Error(t, RenderList(cfg, []client.Index{{Name: "main"}}, 0, 1))
}

func TestOutputFlagAliasesFormat(t *testing.T) {
	t.Parallel()

	cfg, _ := testCLIConfig("table")
	f, err := cfg.Format()
	require.NoError(t, err)
	require.Equal(t, output.FormatTable, f)

	// --output wins over the --format default.
	cfg.Globals.Output = "json"
	f, err = cfg.Format()
	require.NoError(t, err)
	require.Equal(t, output.FormatJSON, f)
}

func TestManagerHonorsConfigPathFlag(t *testing.T) {
	t.Parallel()

	cfg, _ := testCLIConfig("table")
	path := filepath.Join(t.TempDir(), "state.json")
	cfg.Globals.ConfigPath = path

	m, err := cfg.Manager()
	require.NoError(t, err)
	require.Equal(t, path, m.Path())
}

func TestBuildClientSharesMetricsCollector(t *testing.T) {
	t.Parallel()

	// Two builds must not fight over prometheus registration: the
	// vectors register once and every client shares the collector.
	snap := &config.Snapshot{
		BaseURL:  "https://splunk.example.com:8089",
		APIToken: secret.New("tok"),
	}
	_, err := BuildClient(snap)
	require.NoError(t, err)
	_, err = BuildClient(snap)
	require.NoError(t, err)
	require.Same(t, Collector(), Collector())
}

func TestBuildClientAuthSelection(t *testing.T) {
	t.Parallel()

	// Token wins when configured.
	clt, err := BuildClient(&config.Snapshot{
		BaseURL:  "https://splunk.example.com:8089",
		APIToken: secret.New("tok"),
	})
	require.NoError(t, err)
	require.Equal(t, "api_token", clt.AuthStrategyName())

	// Username/password falls back to session login.
	clt, err = BuildClient(&config.Snapshot{
		BaseURL:  "https://splunk.example.com:8089",
		Username: "admin",
		Password: secret.New("hunter2"),
	})
	require.NoError(t, err)
	require.Equal(t, "session_token", clt.AuthStrategyName())

	// Neither is an error that names the token variable.
	_, err = BuildClient(&config.Snapshot{BaseURL: "https://splunk.example.com:8089"})
	require.Error(t, err)
	require.Contains(t, err.Error(), config.EnvAPIToken)
}

func TestSplitCommas(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{"a", "b", "c"}, splitCommas([]string{"a,b", " c "}))
	require.Empty(t, splitCommas([]string{" , ", ""}))
}

func TestFlattenReportKeepsProfileFailures(t *testing.T) {
	t.Parallel()

	report := &multi.Report{
		Profiles: []multi.ProfileResult{
			{Profile: "dead", Error: "connection refused"},
			{Profile: "prod", Summaries: []multi.ResourceSummary{
				{Resource: "indexes", Count: 12},
				{Resource: "health", Detail: "green"},
			}},
		},
	}

	rows := flattenReport(report)
	require.Len(t, rows, 3)
	require.Equal(t, "dead", rows[0].Profile)
	require.Equal(t, "connection refused", rows[0].Error)
	require.Equal(t, "prod", rows[1].Profile)
	require.Equal(t, "indexes", rows[1].Resource)
	require.Equal(t, 12, rows[1].Count)
	require.Equal(t, "health", rows[2].Resource)
}

func TestCommandsCoverAllNames(t *testing.T) {
	t.Parallel()
	require.Len(t, Commands(), 22)
}

func TestVersionString(t *testing.T) {
	t.Parallel()
	require.False(t, strings.Contains(Version, " "))
}
