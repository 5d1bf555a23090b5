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
	"github.com/splunkctl/splunkctl/lib/secret"
)

// UsersCommand implements "splunkctl users".
type UsersCommand struct {
	list   *kingpin.CmdClause
	get    *kingpin.CmdClause
	add    *kingpin.CmdClause
	rm     *kingpin.CmdClause
	update *kingpin.CmdClause

	name     string
	password string
	roles    []string
	realName string
	email    string
	settings map[string]string
	offset   int
	count    int
	force    bool
}

// Initialize sets up the command.
func (c *UsersCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.settings = make(map[string]string)
	users := app.Command("users", "Manage user accounts.")

	c.list = users.Command("ls", "List users.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = users.Command("get", "Show one user.")
	c.get.Arg("name", "User name.").Required().StringVar(&c.name)

	c.add = users.Command("add", "Create a user account.")
	c.add.Arg("name", "User name.").Required().StringVar(&c.name)
	c.add.Flag("password", "Initial password.").Required().StringVar(&c.password)
	c.add.Flag("roles", "Role to assign; repeatable.").StringsVar(&c.roles)
	c.add.Flag("real-name", "Display name.").StringVar(&c.realName)
	c.add.Flag("email", "Email address.").StringVar(&c.email)

	c.rm = users.Command("rm", "Delete a user account.")
	c.rm.Arg("name", "User name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.update = users.Command("update", "Update user settings.")
	c.update.Arg("name", "User name.").Required().StringVar(&c.name)
	c.update.Flag("set", "Raw setting as key=value; repeatable.").StringMapVar(&c.settings)
}

// TryRun executes the command when selected.
func (c *UsersCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			users, total, err := clt.ListUsers(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, users, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			user, err := clt.GetUser(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.User{*user}, 0, 1)
		}
	case c.add.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			user, err := clt.CreateUser(ctx, client.CreateUserParams{
				Name:     c.name,
				Password: secret.New(c.password),
				Roles:    c.roles,
				RealName: c.realName,
				Email:    c.email,
			})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.User{*user}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete user %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteUser(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "user %s deleted\n", c.name)
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
			user, err := clt.UpdateUser(ctx, c.name, settings)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.User{*user}, 0, 1)
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

// RolesCommand implements "splunkctl roles".
type RolesCommand struct {
	list   *kingpin.CmdClause
	get    *kingpin.CmdClause
	add    *kingpin.CmdClause
	rm     *kingpin.CmdClause
	update *kingpin.CmdClause

	name         string
	imported     []string
	capabilities []string
	settings     map[string]string
	offset       int
	count        int
	force        bool
}

// Initialize sets up the command.
func (c *RolesCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.settings = make(map[string]string)
	roles := app.Command("roles", "Manage roles.")

	c.list = roles.Command("ls", "List roles.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.get = roles.Command("get", "Show one role.")
	c.get.Arg("name", "Role name.").Required().StringVar(&c.name)

	c.add = roles.Command("add", "Create a role.")
	c.add.Arg("name", "Role name.").Required().StringVar(&c.name)
	c.add.Flag("imported", "Imported role; repeatable.").StringsVar(&c.imported)
	c.add.Flag("capability", "Capability to grant; repeatable.").StringsVar(&c.capabilities)

	c.rm = roles.Command("rm", "Delete a role.")
	c.rm.Arg("name", "Role name.").Required().StringVar(&c.name)
	c.rm.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.update = roles.Command("update", "Update role settings.")
	c.update.Arg("name", "Role name.").Required().StringVar(&c.name)
	c.update.Flag("set", "Raw setting as key=value; repeatable.").StringMapVar(&c.settings)
}

// TryRun executes the command when selected.
func (c *RolesCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			roles, total, err := clt.ListRoles(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, roles, c.offset, total)
		}
	case c.get.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			role, err := clt.GetRole(ctx, c.name)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Role{*role}, 0, 1)
		}
	case c.add.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			role, err := clt.CreateRole(ctx, c.name, c.imported, c.capabilities)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Role{*role}, 0, 1)
		}
	case c.rm.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if !c.force {
				ok, err := confirm(cfg, fmt.Sprintf("Delete role %q?", c.name))
				if err != nil || !ok {
					return trace.Wrap(err)
				}
			}
			if err := clt.DeleteRole(ctx, c.name); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "role %s deleted\n", c.name)
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
			role, err := clt.UpdateRole(ctx, c.name, settings)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.Role{*role}, 0, 1)
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
