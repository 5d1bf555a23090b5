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

// Package multi fans resource discovery out to several profiles in
// parallel and collates partial results. A failing profile or a failing
// (profile, resource) pair is reported in place; it never aborts the
// rest of the run.
package multi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/defaults"
)

// Resources is the closed set of aggregatable resource names.
var Resources = []string{
	"health", "jobs", "indexes", "apps", "users", "cluster", "kvstore",
	"license", "saved-searches", "overview", "search-peers",
	"fired-alerts", "forwarders",
}

// NormalizeResources trims, lower-cases and deduplicates resource names
// preserving first occurrence, then validates against the closed set.
func NormalizeResources(names []string) ([]string, error) {
	valid := make(map[string]bool, len(Resources))
	for _, r := range Resources {
		valid[r] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		if !valid[name] {
			return nil, trace.BadParameter("unknown resource %q, valid resources: %s", name, strings.Join(Resources, ", "))
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, trace.BadParameter("no resources selected, valid resources: %s", strings.Join(Resources, ", "))
	}
	return out, nil
}

// NormalizeProfiles trims and deduplicates profile names. Case is
// preserved, but duplicates are detected case-insensitively so
// " DEV , dev " collapses to one entry.
func NormalizeProfiles(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// ResourceSummary is one (profile, resource) fetch result.
type ResourceSummary struct {
	// Resource is the normalized resource name.
	Resource string `json:"resource"`
	// Count is the number of records found, where counting applies.
	Count int `json:"count"`
	// Detail is a short human-readable summary (health status, server
	// version, cluster mode, ...).
	Detail string `json:"detail,omitempty"`
	// Error is set when this fetch failed; the rest of the profile's
	// summaries are unaffected.
	Error string `json:"error,omitempty"`
}

// ProfileResult is everything collected for one profile.
type ProfileResult struct {
	Profile string `json:"profile"`
	BaseURL string `json:"base_url,omitempty"`
	// Summaries holds one entry per requested resource, in request
	// order, when the client could be built.
	Summaries []ResourceSummary `json:"summaries,omitempty"`
	// Error is set when the profile's client could not be built or
	// authenticated at all.
	Error string `json:"error,omitempty"`
}

// Report is the combined aggregation result.
type Report struct {
	// Timestamp is RFC3339.
	Timestamp string          `json:"timestamp"`
	Profiles  []ProfileResult `json:"profiles"`
}

// ClientBuilder turns a profile name into a connected client.
type ClientBuilder func(ctx context.Context, profile string) (*client.Client, error)

// Config configures an Aggregator.
type Config struct {
	// Builder builds a client per profile.
	Builder ClientBuilder
	// FetchTimeout caps each (profile, resource) fetch on top of the
	// client's own timeout.
	FetchTimeout time.Duration
	// Clock overrides time in tests.
	Clock clockwork.Clock
}

// CheckAndSetDefaults validates the config.
func (c *Config) CheckAndSetDefaults() error {
	if c.Builder == nil {
		return trace.BadParameter("missing parameter Builder")
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaults.AggregateFetchTimeout
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Aggregator fans fetches out across profiles.
type Aggregator struct {
	cfg Config
}

// New builds an Aggregator.
func New(cfg Config) (*Aggregator, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Aggregator{cfg: cfg}, nil
}

// Run aggregates the requested resources across the requested profiles.
// Inputs are assumed normalized (NormalizeProfiles / NormalizeResources).
// Cancelling ctx stops all outstanding fetches.
func (a *Aggregator) Run(ctx context.Context, profiles, resources []string) (*Report, error) {
	if len(profiles) == 0 {
		return nil, trace.BadParameter("no profiles selected")
	}

	report := &Report{
		Timestamp: a.cfg.Clock.Now().UTC().Format(time.RFC3339),
		Profiles:  make([]ProfileResult, len(profiles)),
	}

	group, ctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		group.Go(func() error {
			report.Profiles[i] = a.runProfile(ctx, profile, resources)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, trace.Wrap(err)
	}
	return report, nil
}

func (a *Aggregator) runProfile(ctx context.Context, profile string, resources []string) ProfileResult {
	result := ProfileResult{Profile: profile}

	clt, err := a.cfg.Builder(ctx, profile)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.BaseURL = clt.BaseURL()
	result.Summaries = make([]ResourceSummary, len(resources))

	// All (profile x resource) fetches run together; one slow resource
	// cannot starve the others.
	var wg sync.WaitGroup
	for i, resource := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
			defer cancel()
			result.Summaries[i] = fetchSummary(fetchCtx, clt, resource)
		}()
	}
	wg.Wait()
	return result
}

func fetchSummary(ctx context.Context, clt *client.Client, resource string) ResourceSummary {
	summary := ResourceSummary{Resource: resource}

	var err error
	switch resource {
	case "health":
		var health *client.HealthCheckOutput
		if health, err = clt.GetHealthReport(ctx); err == nil {
			summary.Count = len(health.Features)
			summary.Detail = health.Health
		}
	case "jobs":
		_, summary.Count, err = clt.ListJobs(ctx, client.Page{})
	case "indexes":
		_, summary.Count, err = clt.ListIndexes(ctx, client.Page{})
	case "apps":
		_, summary.Count, err = clt.ListApps(ctx, client.Page{})
	case "users":
		_, summary.Count, err = clt.ListUsers(ctx, client.Page{})
	case "cluster":
		var cc *client.ClusterConfig
		if cc, err = clt.GetClusterConfig(ctx); err == nil && cc.Mode != nil {
			summary.Detail = *cc.Mode
		}
	case "kvstore":
		var status *client.KvStoreStatus
		if status, err = clt.GetKvStoreStatus(ctx); err == nil && status.Status != nil {
			summary.Detail = *status.Status
		}
	case "license":
		var usage []client.LicenseUsage
		if usage, err = clt.GetLicenseUsage(ctx); err == nil {
			summary.Count = len(usage)
		}
	case "saved-searches":
		_, summary.Count, err = clt.ListSavedSearches(ctx, client.Page{})
	case "overview":
		var info *client.ServerInfo
		if info, err = clt.GetServerInfo(ctx); err == nil {
			if info.Version != nil {
				summary.Detail = "splunkd " + *info.Version
			}
			summary.Count = 1
		}
	case "search-peers":
		_, summary.Count, err = clt.ListSearchPeers(ctx, client.Page{})
	case "fired-alerts":
		_, summary.Count, err = clt.ListFiredAlerts(ctx, client.Page{})
	case "forwarders":
		_, summary.Count, err = clt.ListForwarders(ctx, client.Page{})
	default:
		err = fmt.Errorf("unknown resource %q", resource)
	}
	if err != nil {
		summary.Error = err.Error()
	}
	return summary
}
