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

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
)

// AppsCommand implements "splunkctl apps".
type AppsCommand struct {
	list    *kingpin.CmdClause
	get     *kingpin.CmdClause
	install *kingpin.CmdClause
	remove  *kingpin.CmdClause
	enable  *kingpin.CmdClause
	disable *kingpin.CmdClause

	name   string
	source string
	update bool
	offset int
	count  int
	force  bool
}

// Initialize sets up the command.
func (c *AppsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	apps := app.Command("apps", "Manage Splunk apps.")

	c.list = apps.Command("ls", "List installed apps.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = apps.Command("get", "Show one app.")
	c.get.Arg("name", "App name.").Required().StringVar(&c.name)

	c.install = apps.Command("install", "Install an app from a package path or URL.")
	c.install.Arg("source", "Package path or URL.").Required().StringVar(&c.source)
	c.install.Flag("update", "Upgrade if already installed.").BoolVar(&c.update)

	c.remove = apps.Command("rm", "Uninstall an app.")
	c.remove.Arg("name", "App name.").Required().StringVar(&c.name)
	c.remove.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.enable = apps.Command("enable", "Enable an app.")
	c.enable.Arg("name", "App name.").Required().StringVar(&c.name)

	c.disable = apps.Command("disable", "Disable an app.")
	c.disable.Arg("name", "App name.").Required().StringVar(&c.name)
}

// TryRun executes the command when selected.
func (c *AppsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			apps, total, err := clt.ListApps(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, apps, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			app, err := clt.GetApp(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.App{*app}, 0, 1)
		}
	case c.install.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.InstallApp(ctx, c.source, c.update); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "installed %s\n", c.source)
			return nil
		}
	case c.remove.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Uninstall app %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.RemoveApp(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "app %s removed\n", c.name)
			return nil
		}
	case c.enable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.EnableApp(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "app %s enabled\n", c.name)
			return nil
		}
	case c.disable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.DisableApp(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "app %s disabled\n", c.name)
			return nil
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
