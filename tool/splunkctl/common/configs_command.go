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
	"fmt"
	"maps"
	"slices"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
)

// ConfigsCommand implements "splunkctl configs".
type ConfigsCommand struct {
	files   *kingpin.CmdClause
	stanzas *kingpin.CmdClause
	stanza  *kingpin.CmdClause
	all     *kingpin.CmdClause

	file       string
	stanzaName string
	offset     int
	count      int
}

// Initialize sets up the command.
func (c *ConfigsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	configs := app.Command("configs", "Inspect .conf configuration.")

	c.files = configs.Command("files", "Summarize the curated .conf files.").Default()

	c.stanzas = configs.Command("stanzas", "List the stanzas of one .conf file.")
	c.stanzas.Arg("file", "Config file name, e.g. props.").Required().StringVar(&c.file)
	c.stanzas.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.stanzas.Flag("count", "Page size.").IntVar(&c.count)

	c.stanza = configs.Command("stanza", "Show one stanza.")
	c.stanza.Arg("file", "Config file name, e.g. props.").Required().StringVar(&c.file)
	c.stanza.Arg("stanza", "Stanza name.").Required().StringVar(&c.stanzaName)

	c.all = configs.Command("all", "Dump stanzas across the curated file set.")
}

// TryRun executes the command when selected.
func (c *ConfigsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.files.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			files, agg, err := clt.ListConfigFiles(ctx)
			if err != nil {
				return trace.Wrap(err)
			}
			reportConfigErrors(cfg, agg)
			return RenderList(cfg, files, 0, len(files))
		}
	case c.stanzas.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			stanzas, total, err := clt.ListConfigStanzas(ctx, c.file, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, stanzas, c.offset, total)
		}
	case c.stanza.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			stanza, err := clt.GetConfigStanza(ctx, c.file, c.stanzaName)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.ConfigStanza{*stanza}, 0, 1)
		}
	case c.all.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			agg, err := clt.ListAllConfigStanzas(ctx)
			if err != nil {
				return trace.Wrap(err)
			}
			reportConfigErrors(cfg, agg)
			var stanzas []client.ConfigStanza
			for _, file := range slices.Sorted(maps.Keys(agg.Stanzas)) {
				stanzas = append(stanzas, agg.Stanzas[file]...)
			}
			return RenderList(cfg, stanzas, 0, len(stanzas))
		}
	default:
		return false, nil
	}

	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(run(ctx, clt))
}

// reportConfigErrors surfaces per-file failures on stderr; the aggregate
// itself still renders.
func reportConfigErrors(cfg *CLIConfig, agg *client.ConfigAggregate) {
	for _, file := range slices.Sorted(maps.Keys(agg.Errors)) {
		fmt.Fprintf(cfg.Stderr, "warning: %s.conf: %v\n", file, agg.Errors[file])
	}
}

// AuditCommand implements "splunkctl audit".
type AuditCommand struct {
	audit *kingpin.CmdClause

	user   string
	action string
}

// Initialize sets up the command.
func (c *AuditCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.audit = app.Command("audit", "Query the audit trail.")
	c.audit.Flag("user", "Limit to one acting user.").StringVar(&c.user)
	c.audit.Flag("action", "Limit to one audit action, e.g. login_attempt.").StringVar(&c.action)
}

// TryRun executes the command when selected.
func (c *AuditCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.audit.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	snap, err := cfg.Snapshot()
	if err != nil {
		return true, trace.Wrap(err)
	}
	events, err := clt.ListAuditEvents(ctx, client.AuditParams{
		User:         c.user,
		Action:       c.action,
		EarliestTime: snap.EarliestTime,
		LatestTime:   snap.LatestTime,
		MaxResults:   snap.MaxResults,
	})
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(RenderList(cfg, events, 0, len(events)))
}
