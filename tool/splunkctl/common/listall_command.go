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
	"context"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/multi"
	"github.com/splunkctl/splunkctl/lib/output"
)

// ListAllCommand implements "splunkctl list-all": resource discovery
// fanned out across several profiles at once.
type ListAllCommand struct {
	listAll *kingpin.CmdClause

	profiles  []string
	resources []string
}

// Initialize sets up the command.
func (c *ListAllCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.listAll = app.Command("list-all", "Summarize resources across profiles.")
	c.listAll.Flag("profiles", "Profiles to query; repeatable or comma-separated. Defaults to every configured profile.").StringsVar(&c.profiles)
	c.listAll.Flag("resources", "Resources to summarize; repeatable or comma-separated. Defaults to all: "+strings.Join(multi.Resources, ", ")+".").StringsVar(&c.resources)
}

// TryRun executes the command when selected.
func (c *ListAllCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.listAll.FullCommand() {
		return false, nil
	}

	manager, err := cfg.Manager()
	if err != nil {
		return true, trace.Wrap(err)
	}
	state := manager.State()

	profiles := multi.NormalizeProfiles(splitCommas(c.profiles))
	if len(profiles) == 0 {
		profiles = state.ProfileNames()
	}
	if len(profiles) == 0 {
		return true, trace.NotFound("no profiles configured, run 'splunkctl config profile add' first")
	}

	resources := splitCommas(c.resources)
	if len(resources) == 0 {
		resources = multi.Resources
	}
	resources, err = multi.NormalizeResources(resources)
	if err != nil {
		return true, trace.Wrap(err)
	}

	agg, err := multi.New(multi.Config{
		Builder: func(ctx context.Context, profile string) (*client.Client, error) {
			snap, err := config.Resolve(config.ResolveParams{
				State:       state,
				ProfileName: profile,
				Keyring:     cfg.Keyring,
				Getenv:      func(string) string { return "" },
			})
			if err != nil {
				return nil, trace.Wrap(err)
			}
			return BuildClient(snap)
		},
	})
	if err != nil {
		return true, trace.Wrap(err)
	}

	report, err := agg.Run(ctx, profiles, resources)
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(RenderList(cfg, flattenReport(report), 0, -1))
}

// splitCommas expands mixed repeatable/comma-separated flag values.
func splitCommas(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// aggregateRow is one rendered line of the cross-profile report.
type aggregateRow struct {
	Profile  string `json:"profile"`
	Resource string `json:"resource,omitempty"`
	Count    int    `json:"count"`
	Detail   string `json:"detail,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r *aggregateRow) Headers(bool) []string {
	return []string{"profile", "resource", "count", "detail", "error"}
}

func (r *aggregateRow) Row(bool) []string {
	return []string{r.Profile, r.Resource, strconv.Itoa(r.Count), r.Detail, r.Error}
}

func (r *aggregateRow) XMLElement() string { return "summary" }
func (r *aggregateRow) XMLFields() []output.Field {
	headers := r.Headers(true)
	row := r.Row(true)
	fields := make([]output.Field, len(headers))
	for i := range headers {
		fields[i] = output.Field{Name: headers[i], Value: &row[i]}
	}
	return fields
}

// flattenReport turns the nested report into one row per
// (profile, resource) pair; a profile-level failure becomes a single row.
func flattenReport(report *multi.Report) []aggregateRow {
	var rows []aggregateRow
	for _, p := range report.Profiles {
		if p.Error != "" {
			rows = append(rows, aggregateRow{Profile: p.Profile, Error: p.Error})
			continue
		}
		for _, s := range p.Summaries {
			rows = append(rows, aggregateRow{
				Profile:  p.Profile,
				Resource: s.Resource,
				Count:    s.Count,
				Detail:   s.Detail,
				Error:    s.Error,
			})
		}
	}
	return rows
}
