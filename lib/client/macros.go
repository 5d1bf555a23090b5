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

package client

import (
	"context"
	"net/url"

	"github.com/gravitational/trace"
)

const routeMacros = "/services/admin/macros"

// ListMacros returns search macros with the paging total.
func (c *Client) ListMacros(ctx context.Context, page Page) ([]Macro, int, error) {
	body, err := c.get(ctx, routeMacros, routeMacros, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing macros")
	}
	macros, total, err := decodeEntries[Macro](body)
	return macros, total, trace.Wrap(err)
}

// GetMacro returns one search macro by name. Macros taking arguments are
// addressed by their full name including the arity suffix, e.g. "foo(2)".
func (c *Client) GetMacro(ctx context.Context, name string) (*Macro, error) {
	if name == "" {
		return nil, trace.BadParameter("missing macro name")
	}
	path := joinPath("services", "admin", "macros", EncodePathSegment(name))
	body, err := c.get(ctx, routeMacros+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting macro %q", name)
	}
	return decodeFirstEntry[Macro](body, "macro "+name)
}

// CreateMacro creates a search macro. Args is the comma-separated
// argument list for parameterized macros, empty otherwise.
func (c *Client) CreateMacro(ctx context.Context, name, definition, args string) (*Macro, error) {
	if name == "" || definition == "" {
		return nil, trace.BadParameter("macro requires both name and definition")
	}
	form := url.Values{
		"name":       []string{name},
		"definition": []string{definition},
	}
	if args != "" {
		form.Set("args", args)
	}
	body, err := c.postForm(ctx, routeMacros, routeMacros, form)
	if err != nil {
		return nil, trace.Wrap(err, "creating macro %q", name)
	}
	return decodeFirstEntry[Macro](body, "macro "+name)
}

// UpdateMacro modifies a search macro.
func (c *Client) UpdateMacro(ctx context.Context, name string, settings url.Values) (*Macro, error) {
	if name == "" {
		return nil, trace.BadParameter("missing macro name")
	}
	path := joinPath("services", "admin", "macros", EncodePathSegment(name))
	body, err := c.postForm(ctx, routeMacros+"/{name}", path, settings)
	if err != nil {
		return nil, trace.Wrap(err, "updating macro %q", name)
	}
	return decodeFirstEntry[Macro](body, "macro "+name)
}

// DeleteMacro removes a search macro.
func (c *Client) DeleteMacro(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing macro name")
	}
	path := joinPath("services", "admin", "macros", EncodePathSegment(name))
	_, err := c.delete(ctx, routeMacros+"/{name}", path)
	return trace.Wrap(err, "deleting macro %q", name)
}
