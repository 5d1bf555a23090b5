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
	"net/url"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
)

// SavedSearchesCommand implements "splunkctl saved-searches".
type SavedSearchesCommand struct {
	list     *kingpin.CmdClause
	get      *kingpin.CmdClause
	add      *kingpin.CmdClause
	rm       *kingpin.CmdClause
	update   *kingpin.CmdClause
	dispatch *kingpin.CmdClause
	alerts   *kingpin.CmdClause

	name     string
	query    string
	cron     string
	settings map[string]string
	offset   int
	count    int
	force    bool
}

// Initialize sets up the command.
func (c *SavedSearchesCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.settings = make(map[string]string)
	saved := app.Command("saved-searches", "Manage saved searches and alerts.")

	c.list = saved.Command("ls", "List saved searches.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = saved.Command("get", "Show one saved search.")
	c.get.Arg("name", "Saved search name.").Required().StringVar(&c.name)

	c.add = saved.Command("add", "Create a saved search.")
	c.add.Arg("name", "Saved search name.").Required().StringVar(&c.name)
	c.add.Arg("query", "SPL query.").Required().StringVar(&c.query)
	c.add.Flag("cron", "Cron schedule, enables scheduling.").StringVar(&c.cron)

	c.rm = saved.Command("rm", "Delete a saved search.")
	c.rm.Arg("name", "Saved search name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.update = saved.Command("update", "Update saved search settings.")
	c.update.Arg("name", "Saved search name.").Required().StringVar(&c.name)
	c.update.Flag("set", "Raw setting as key=value; repeatable.").StringMapVar(&c.settings)

	c.dispatch = saved.Command("dispatch", "Run a saved search now.")
	c.dispatch.Arg("name", "Saved search name.").Required().StringVar(&c.name)

	c.alerts = saved.Command("fired-alerts", "List fired alerts.")
	c.alerts.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.alerts.Flag("count", "Page size.").IntVar(&c.count)
}

// TryRun executes the command when selected.
func (c *SavedSearchesCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			searches, total, err := clt.ListSavedSearches(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, searches, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			search, err := clt.GetSavedSearch(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.SavedSearch{*search}, 0, 1)
		}
	case c.add.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			extra := url.Values{}
			if c.cron != "" {
				extra.Set("cron_schedule", c.cron)
				extra.Set("is_scheduled", "1")
			}
			search, err := clt.CreateSavedSearch(ctx, c.name, c.query, extra)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.SavedSearch{*search}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete saved search %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteSavedSearch(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "saved search %s deleted\n", c.name)
			return nil
		}
	case c.update.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if len(c.settings) == 0 {
				return trace.BadParameter("nothing to update, pass --set key=value")
			}
			settings := url.Values{}
			for k, v := range c.settings {
				settings.Set(k, v)
			}
			search, err := clt.UpdateSavedSearch(ctx, c.name, settings)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.SavedSearch{*search}, 0, 1)
		}
	case c.dispatch.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			sid, err := clt.DispatchSavedSearch(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "dispatched as job %s\n", sid)
			return nil
		}
	case c.alerts.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			alerts, total, err := clt.ListFiredAlerts(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, alerts, c.offset, total)
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

// MacrosCommand implements "splunkctl macros".
type MacrosCommand struct {
	list   *kingpin.CmdClause
	get    *kingpin.CmdClause
	add    *kingpin.CmdClause
	rm     *kingpin.CmdClause
	update *kingpin.CmdClause

	name       string
	definition string
	args       string
	settings   map[string]string
	offset     int
	count      int
	force      bool
}

// Initialize sets up the command.
func (c *MacrosCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.settings = make(map[string]string)
	macros := app.Command("macros", "Manage search macros.")

	c.list = macros.Command("ls", "List macros.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = macros.Command("get", "Show one macro.")
	c.get.Arg("name", "Macro name, e.g. mymacro(2).").Required().StringVar(&c.name)

	c.add = macros.Command("add", "Create a macro.")
	c.add.Arg("name", "Macro name; append (N) for N arguments.").Required().StringVar(&c.name)
	c.add.Arg("definition", "Macro expansion.").Required().StringVar(&c.definition)
	c.add.Flag("args", "Comma-separated argument names.").StringVar(&c.args)

	c.rm = macros.Command("rm", "Delete a macro.")
	c.rm.Arg("name", "Macro name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.update = macros.Command("update", "Update macro settings.")
	c.update.Arg("name", "Macro name.").Required().StringVar(&c.name)
	c.update.Flag("set", "Raw setting as key=value; repeatable.").StringMapVar(&c.settings)
}

// TryRun executes the command when selected.
func (c *MacrosCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			macros, total, err := clt.ListMacros(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, macros, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			macro, err := clt.GetMacro(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Macro{*macro}, 0, 1)
		}
	case c.add.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			macro, err := clt.CreateMacro(ctx, c.name, c.definition, c.args)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Macro{*macro}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete macro %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteMacro(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "macro %s deleted\n", c.name)
			return nil
		}
	case c.update.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if len(c.settings) == 0 {
				return trace.BadParameter("nothing to update, pass --set key=value")
			}
			settings := url.Values{}
			for k, v := range c.settings {
				settings.Set(k, v)
			}
			macro, err := clt.UpdateMacro(ctx, c.name, settings)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Macro{*macro}, 0, 1)
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

// LookupsCommand implements "splunkctl lookups".
type LookupsCommand struct {
	list *kingpin.CmdClause
	get  *kingpin.CmdClause
	rm   *kingpin.CmdClause

	name   string
	offset int
	count  int
	force  bool
}

// Initialize sets up the command.
func (c *LookupsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	lookups := app.Command("lookups", "Manage lookup table files.")

	c.list = lookups.Command("ls", "List lookup tables.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = lookups.Command("get", "Show one lookup table.")
	c.get.Arg("name", "Lookup table name.").Required().StringVar(&c.name)

	c.rm = lookups.Command("rm", "Delete a lookup table.")
	c.rm.Arg("name", "Lookup table name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)
}

// TryRun executes the command when selected.
func (c *LookupsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			lookups, total, err := clt.ListLookupTables(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, lookups, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			lookup, err := clt.GetLookupTable(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.LookupTable{*lookup}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete lookup table %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteLookupTable(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "lookup table %s deleted\n", c.name)
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
