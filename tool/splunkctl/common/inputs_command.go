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

// InputsCommand implements "splunkctl inputs".
type InputsCommand struct {
	list    *kingpin.CmdClause
	enable  *kingpin.CmdClause
	disable *kingpin.CmdClause

	kind   string
	name   string
	offset int
	count  int
}

// Initialize sets up the command.
func (c *InputsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	inputs := app.Command("inputs", "Manage data inputs.")

	c.list = inputs.Command("ls", "List data inputs across kinds.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.enable = inputs.Command("enable", "Enable an input.")
	c.enable.Arg("kind", "Input kind, e.g. monitor, tcp/raw, udp.").Required().StringVar(&c.kind)
	c.enable.Arg("name", "Input name.").Required().StringVar(&c.name)

	c.disable = inputs.Command("disable", "Disable an input.")
	c.disable.Arg("kind", "Input kind, e.g. monitor, tcp/raw, udp.").Required().StringVar(&c.kind)
	c.disable.Arg("name", "Input name.").Required().StringVar(&c.name)
}

// TryRun executes the command when selected.
func (c *InputsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			inputs, total, err := clt.ListInputs(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, inputs, c.offset, total)
		}
	case c.enable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.EnableInput(ctx, c.kind, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "input %s/%s enabled\n", c.kind, c.name)
			return nil
		}
	case c.disable.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.DisableInput(ctx, c.kind, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "input %s/%s disabled\n", c.kind, c.name)
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

// ForwardersCommand implements "splunkctl forwarders".
type ForwardersCommand struct {
	list *kingpin.CmdClause

	offset int
	count  int
}

// Initialize sets up the command.
func (c *ForwardersCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	forwarders := app.Command("forwarders", "Show deployment clients phoning home.")
	c.list = forwarders.Command("ls", "List forwarders.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)
}

// TryRun executes the command when selected.
func (c *ForwardersCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.list.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	forwarders, total, err := clt.ListForwarders(ctx, client.Page{Offset: c.offset, Count: c.count})
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(RenderList(cfg, forwarders, c.offset, total))
}
