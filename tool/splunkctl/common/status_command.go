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

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
)

// LicenseCommand implements "splunkctl license".
type LicenseCommand struct {
	usage  *kingpin.CmdClause
	pools  *kingpin.CmdClause
	stacks *kingpin.CmdClause

	offset int
	count  int
}

// Initialize sets up the command.
func (c *LicenseCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	license := app.Command("license", "Inspect license usage.")

	c.usage = license.Command("usage", "Show per-pool license usage.").Default()

	c.pools = license.Command("pools", "List license pools.")
	c.pools.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.pools.Flag("count", "Page size.").IntVar(&c.count)

	c.stacks = license.Command("stacks", "List license stacks.")
	c.stacks.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.stacks.Flag("count", "Page size.").IntVar(&c.count)
}

// TryRun executes the command when selected.
func (c *LicenseCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.usage.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			usage, err := clt.GetLicenseUsage(ctx)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, usage, 0, len(usage))
		}
	case c.pools.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			pools, total, err := clt.ListLicensePools(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, pools, c.offset, total)
		}
	case c.stacks.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			stacks, total, err := clt.ListLicenseStacks(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, stacks, c.offset, total)
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

// HealthCommand implements "splunkctl health".
type HealthCommand struct {
	report *kingpin.CmdClause
	peers  *kingpin.CmdClause

	features bool
	offset   int
	count    int
}

// Initialize sets up the command.
func (c *HealthCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	health := app.Command("health", "Inspect splunkd health.")

	c.report = health.Command("report", "Show the splunkd health report.").Default()
	c.report.Flag("features", "List every feature instead of the rollup.").BoolVar(&c.features)

	c.peers = health.Command("peers", "List distributed search peers.")
	c.peers.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.peers.Flag("count", "Page size.").IntVar(&c.count)
}

// TryRun executes the command when selected.
func (c *HealthCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.report.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			report, err := clt.GetHealthReport(ctx)
			if err != nil {
				return trace.Wrap(err)
			}
			if c.features {
				return RenderList(cfg, report.Features, 0, len(report.Features))
			}
			return RenderList(cfg, []client.HealthCheckOutput{*report}, 0, 1)
		}
	case c.peers.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			peers, total, err := clt.ListSearchPeers(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, peers, c.offset, total)
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

// KvstoreCommand implements "splunkctl kvstore".
type KvstoreCommand struct {
	status *kingpin.CmdClause
}

// Initialize sets up the command.
func (c *KvstoreCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	kvstore := app.Command("kvstore", "Inspect the KV store.")
	c.status = kvstore.Command("status", "Show KV store status.").Default()
}

// TryRun executes the command when selected.
func (c *KvstoreCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.status.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	status, err := clt.GetKvStoreStatus(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(RenderList(cfg, []client.KvStoreStatus{*status}, 0, 1))
}

// ClusterCommand implements "splunkctl cluster".
type ClusterCommand struct {
	config *kingpin.CmdClause
}

// Initialize sets up the command.
func (c *ClusterCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	cluster := app.Command("cluster", "Inspect indexer clustering.")
	c.config = cluster.Command("config", "Show the cluster configuration.").Default()
}

// TryRun executes the command when selected.
func (c *ClusterCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.config.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	cc, err := clt.GetClusterConfig(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(RenderList(cfg, []client.ClusterConfig{*cc}, 0, 1))
}
