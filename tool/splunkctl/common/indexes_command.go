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

// IndexesCommand implements "splunkctl indexes".
type IndexesCommand struct {
	list    *kingpin.CmdClause
	get     *kingpin.CmdClause
	add     *kingpin.CmdClause
	rm      *kingpin.CmdClause
	enable  *kingpin.CmdClause
	disable *kingpin.CmdClause
	update  *kingpin.CmdClause

	name       string
	offset     int
	count      int
	maxDataMB  int64
	frozenSecs int64
	dataType   string
	settings   map[string]string
	force      bool
}

// Initialize sets up the command.
func (c *IndexesCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.settings = make(map[string]string)
	indexes := app.Command("indexes", "Manage indexes.")

	c.list = indexes.Command("ls", "List indexes.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = indexes.Command("get", "Show one index.")
	c.get.Arg("name", "Index name.").Required().StringVar(&c.name)

	c.add = indexes.Command("add", "Create an index.")
	c.add.Arg("name", "Index name.").Required().StringVar(&c.name)
	c.add.Flag("max-data-size-mb", "Maximum total data size in MB.").Int64Var(&c.maxDataMB)
	c.add.Flag("frozen-time-secs", "Seconds before events freeze out.").Int64Var(&c.frozenSecs)
	c.add.Flag("data-type", "Index data type: event or metric.").StringVar(&c.dataType)

	c.rm = indexes.Command("rm", "Delete an index.")
	c.rm.Arg("name", "Index name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.enable = indexes.Command("enable", "Enable an index.")
	c.enable.Arg("name", "Index name.").Required().StringVar(&c.name)

	c.disable = indexes.Command("disable", "Disable an index.")
	c.disable.Arg("name", "Index name.").Required().StringVar(&c.name)

	c.update = indexes.Command("update", "Update index settings.")
	c.update.Arg("name", "Index name.").Required().StringVar(&c.name)
	c.update.Flag("set", "Raw setting as key=value; repeatable.").StringMapVar(&c.settings)
}

// TryRun executes the command when selected.
func (c *IndexesCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			indexes, total, err := clt.ListIndexes(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, indexes, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			index, err := clt.GetIndex(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Index{*index}, 0, 1)
		}
	case c.add.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			index, err := clt.CreateIndex(ctx, c.name, client.CreateIndexParams{
				MaxTotalDataSizeMB:     c.maxDataMB,
				FrozenTimePeriodInSecs: c.frozenSecs,
				DataType:               c.dataType,
			})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Index{*index}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete index %q and all its data?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteIndex(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "index %s deleted\n", c.name)
			return nil
		}
	case c.enable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.EnableIndex(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "index %s enabled\n", c.name)
			return nil
		}
	case c.disable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.DisableIndex(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "index %s disabled\n", c.name)
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
			index, err := clt.UpdateIndex(ctx, c.name, settings)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Index{*index}, 0, 1)
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
