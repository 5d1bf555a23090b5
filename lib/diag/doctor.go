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

// Package diag implements the doctor diagnostic report and the support
// bundle writer.
package diag

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/secret"
	"github.com/splunkctl/splunkctl/lib/utils"
)

// Check is one named diagnostic step.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, failed, skipped
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ConfigSummary is the non-sensitive slice of the resolved config.
type ConfigSummary struct {
	Profile      string `json:"profile,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	AuthStrategy string `json:"auth_strategy,omitempty"`
	SkipVerify   bool   `json:"skip_verify"`
	Timeout      string `json:"timeout"`
	MaxRetries   int    `json:"max_retries"`
}

// Report is the doctor output.
type Report struct {
	Version   string        `json:"version"`
	OS        string        `json:"os"`
	Arch      string        `json:"arch"`
	Timestamp string        `json:"timestamp"`
	Config    ConfigSummary `json:"config"`
	Checks    []Check       `json:"checks"`
	// PartialErrors maps probe endpoints to their failures.
	PartialErrors map[string]string `json:"partial_errors,omitempty"`
	// HealthOutput is the parsed splunkd health report when reachable.
	HealthOutput *client.HealthCheckOutput `json:"health_output,omitempty"`
}

// Params feeds Run.
type Params struct {
	// Version is the CLI version string.
	Version string
	// Snapshot is the resolved config; nil when resolution itself failed.
	Snapshot *config.Snapshot
	// ResolveErr is the config resolution failure, if any.
	ResolveErr error
	// Client is the built client; nil when building failed.
	Client *client.Client
	// BuildErr is the client build failure, if any.
	BuildErr error
	// Probe enables the live endpoint probes.
	Probe bool
}

// Run assembles the diagnostic report. It never returns an error: every
// failure lands inside the report.
func Run(ctx context.Context, params Params) *Report {
	report := &Report{
		Version:       params.Version,
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		PartialErrors: make(map[string]string),
	}

	if params.ResolveErr != nil {
		report.Checks = append(report.Checks, Check{
			Name: "config_load", Status: "failed", Error: params.ResolveErr.Error(),
		})
	} else {
		report.Checks = append(report.Checks, Check{Name: "config_load", Status: "ok"})
	}

	if snap := params.Snapshot; snap != nil {
		report.Config = ConfigSummary{
			Profile:    snap.ProfileName,
			BaseURL:    snap.BaseURL,
			SkipVerify: snap.SkipVerify,
			Timeout:    snap.Timeout.String(),
			MaxRetries: snap.MaxRetries,
		}
		switch {
		case !snap.APIToken.IsZero():
			report.Config.AuthStrategy = "api_token"
			report.Checks = append(report.Checks, Check{Name: "auth_strategy", Status: "ok", Detail: "api_token"})
		case snap.Username != "" && !snap.Password.IsZero():
			report.Config.AuthStrategy = "session_token"
			report.Checks = append(report.Checks, Check{Name: "auth_strategy", Status: "ok", Detail: "session_token"})
		default:
			report.Checks = append(report.Checks, Check{
				Name: "auth_strategy", Status: "failed", Error: "no credentials configured",
			})
		}
	} else {
		report.Checks = append(report.Checks, Check{Name: "auth_strategy", Status: "skipped"})
	}

	switch {
	case params.BuildErr != nil:
		report.Checks = append(report.Checks, Check{
			Name: "client_build", Status: "failed", Error: params.BuildErr.Error(),
		})
	case params.Client != nil:
		report.Checks = append(report.Checks, Check{Name: "client_build", Status: "ok"})
	default:
		report.Checks = append(report.Checks, Check{Name: "client_build", Status: "skipped"})
	}

	if params.Probe && params.Client != nil {
		runProbes(ctx, params.Client, report)
	}
	return report
}

func runProbes(ctx context.Context, clt *client.Client, report *Report) {
	info, err := clt.GetServerInfo(ctx)
	if err != nil {
		report.PartialErrors["/services/server/info"] = err.Error()
		report.Checks = append(report.Checks, Check{
			Name: "probe_server_info", Status: "failed", Error: err.Error(),
		})
	} else {
		detail := ""
		if info.Version != nil {
			detail = "splunkd " + *info.Version
		}
		report.Checks = append(report.Checks, Check{Name: "probe_server_info", Status: "ok", Detail: detail})
	}

	health, err := clt.GetHealthReport(ctx)
	if err != nil {
		report.PartialErrors["/services/server/health/splunkd/details"] = err.Error()
		report.Checks = append(report.Checks, Check{Name: "probe_health", Status: "failed", Error: err.Error()})
	} else {
		report.HealthOutput = health
		report.Checks = append(report.Checks, Check{Name: "probe_health", Status: "ok", Detail: health.Health})
	}

	if _, err := clt.GetKvStoreStatus(ctx); err != nil {
		report.PartialErrors["/services/kvstore/status"] = err.Error()
		report.Checks = append(report.Checks, Check{Name: "probe_kvstore", Status: "failed", Error: err.Error()})
	} else {
		report.Checks = append(report.Checks, Check{Name: "probe_kvstore", Status: "ok"})
	}
}

// WriteBundle writes a support-bundle zip next to the report: the report
// itself with health output and partial errors redacted, plus an
// environment.txt listing variable names with every value replaced by
// the redaction placeholder.
func WriteBundle(path string, report *Report) error {
	sanitized := *report
	sanitized.HealthOutput = nil
	sanitized.PartialErrors = nil

	reportJSON, err := json.MarshalIndent(&sanitized, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create("report.json")
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := f.Write(reportJSON); err != nil {
		return trace.Wrap(err)
	}

	f, err = zw.Create("environment.txt")
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := f.Write([]byte(redactedEnvironment())); err != nil {
		return trace.Wrap(err)
	}

	if err := zw.Close(); err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(utils.WriteFileAtomic(path, buf.Bytes(), 0o600))
}

// redactedEnvironment lists variable names, values redacted. Names alone
// are diagnostic (is SPLUNK_API_TOKEN even set?) without leaking.
func redactedEnvironment() string {
	var names []string
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s\n", name, secret.Redacted)
	}
	return b.String()
}
