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

const routeApps = "/services/apps/local"

// ListApps returns installed apps with the paging total.
func (c *Client) ListApps(ctx context.Context, page Page) ([]App, int, error) {
	body, err := c.get(ctx, routeApps, routeApps, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing apps")
	}
	apps, total, err := decodeEntries[App](body)
	return apps, total, trace.Wrap(err)
}

// GetApp returns one app by name.
func (c *Client) GetApp(ctx context.Context, name string) (*App, error) {
	if name == "" {
		return nil, trace.BadParameter("missing app name")
	}
	path := joinPath("services", "apps", "local", EncodePathSegment(name))
	body, err := c.get(ctx, routeApps+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting app %q", name)
	}
	return decodeFirstEntry[App](body, "app "+name)
}

// InstallApp installs an app from a package path or URL visible to the
// server. Update allows overwriting an existing install.
func (c *Client) InstallApp(ctx context.Context, source string, update bool) error {
	if source == "" {
		return trace.BadParameter("missing app package source")
	}
	form := url.Values{"name": []string{source}}
	if update {
		form.Set("update", "true")
	}
	_, err := c.postForm(ctx, routeApps, routeApps, form)
	return trace.Wrap(err, "installing app from %q", source)
}

// RemoveApp uninstalls an app.
func (c *Client) RemoveApp(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing app name")
	}
	path := joinPath("services", "apps", "local", EncodePathSegment(name))
	_, err := c.delete(ctx, routeApps+"/{name}", path)
	return trace.Wrap(err, "removing app %q", name)
}

// EnableApp enables an app.
func (c *Client) EnableApp(ctx context.Context, name string) error {
	return trace.Wrap(c.setAppDisabled(ctx, name, false))
}

// DisableApp disables an app.
func (c *Client) DisableApp(ctx context.Context, name string) error {
	return trace.Wrap(c.setAppDisabled(ctx, name, true))
}

func (c *Client) setAppDisabled(ctx context.Context, name string, disabled bool) error {
	if name == "" {
		return trace.BadParameter("missing app name")
	}
	action := "enable"
	if disabled {
		action = "disable"
	}
	path := joinPath("services", "apps", "local", EncodePathSegment(name), action)
	_, err := c.postForm(ctx, routeApps+"/{name}/"+action, path, url.Values{})
	return trace.Wrap(err, "%s app %q", action, name)
}
