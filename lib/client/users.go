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

	"github.com/splunkctl/splunkctl/lib/secret"
)

const (
	routeUsers = "/services/authentication/users"
	routeRoles = "/services/authorization/roles"
)

// ListUsers returns user accounts with the paging total.
func (c *Client) ListUsers(ctx context.Context, page Page) ([]User, int, error) {
	body, err := c.get(ctx, routeUsers, routeUsers, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing users")
	}
	users, total, err := decodeEntries[User](body)
	return users, total, trace.Wrap(err)
}

// GetUser returns one user by name.
func (c *Client) GetUser(ctx context.Context, name string) (*User, error) {
	if name == "" {
		return nil, trace.BadParameter("missing user name")
	}
	path := joinPath("services", "authentication", "users", EncodePathSegment(name))
	body, err := c.get(ctx, routeUsers+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting user %q", name)
	}
	return decodeFirstEntry[User](body, "user "+name)
}

// CreateUserParams carries the fields for a new user account.
type CreateUserParams struct {
	Name     string
	Password secret.Secret
	Roles    []string
	RealName string
	Email    string
}

// CreateUser creates a user account.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if params.Name == "" {
		return nil, trace.BadParameter("missing user name")
	}
	if params.Password.IsZero() {
		return nil, trace.BadParameter("missing password for user %q", params.Name)
	}
	form := url.Values{
		"name":     []string{params.Name},
		"password": []string{params.Password.Reveal()},
	}
	for _, role := range params.Roles {
		form.Add("roles", role)
	}
	if params.RealName != "" {
		form.Set("realname", params.RealName)
	}
	if params.Email != "" {
		form.Set("email", params.Email)
	}
	body, err := c.postForm(ctx, routeUsers, routeUsers, form)
	if err != nil {
		return nil, trace.Wrap(err, "creating user %q", params.Name)
	}
	return decodeFirstEntry[User](body, "user "+params.Name)
}

// UpdateUser modifies a user account.
func (c *Client) UpdateUser(ctx context.Context, name string, settings url.Values) (*User, error) {
	if name == "" {
		return nil, trace.BadParameter("missing user name")
	}
	path := joinPath("services", "authentication", "users", EncodePathSegment(name))
	body, err := c.postForm(ctx, routeUsers+"/{name}", path, settings)
	if err != nil {
		return nil, trace.Wrap(err, "updating user %q", name)
	}
	return decodeFirstEntry[User](body, "user "+name)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing user name")
	}
	path := joinPath("services", "authentication", "users", EncodePathSegment(name))
	_, err := c.delete(ctx, routeUsers+"/{name}", path)
	return trace.Wrap(err, "deleting user %q", name)
}

// ListRoles returns authorization roles with the paging total.
func (c *Client) ListRoles(ctx context.Context, page Page) ([]Role, int, error) {
	body, err := c.get(ctx, routeRoles, routeRoles, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing roles")
	}
	roles, total, err := decodeEntries[Role](body)
	return roles, total, trace.Wrap(err)
}

// GetRole returns one role by name.
func (c *Client) GetRole(ctx context.Context, name string) (*Role, error) {
	if name == "" {
		return nil, trace.BadParameter("missing role name")
	}
	path := joinPath("services", "authorization", "roles", EncodePathSegment(name))
	body, err := c.get(ctx, routeRoles+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting role %q", name)
	}
	return decodeFirstEntry[Role](body, "role "+name)
}

// CreateRole creates an authorization role.
func (c *Client) CreateRole(ctx context.Context, name string, imported []string, capabilities []string) (*Role, error) {
	if name == "" {
		return nil, trace.BadParameter("missing role name")
	}
	form := url.Values{"name": []string{name}}
	for _, r := range imported {
		form.Add("imported_roles", r)
	}
	for _, cap := range capabilities {
		form.Add("capabilities", cap)
	}
	body, err := c.postForm(ctx, routeRoles, routeRoles, form)
	if err != nil {
		return nil, trace.Wrap(err, "creating role %q", name)
	}
	return decodeFirstEntry[Role](body, "role "+name)
}

// UpdateRole modifies a role.
func (c *Client) UpdateRole(ctx context.Context, name string, settings url.Values) (*Role, error) {
	if name == "" {
		return nil, trace.BadParameter("missing role name")
	}
	path := joinPath("services", "authorization", "roles", EncodePathSegment(name))
	body, err := c.postForm(ctx, routeRoles+"/{name}", path, settings)
	if err != nil {
		return nil, trace.Wrap(err, "updating role %q", name)
	}
	return decodeFirstEntry[Role](body, "role "+name)
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing role name")
	}
	path := joinPath("services", "authorization", "roles", EncodePathSegment(name))
	_, err := c.delete(ctx, routeRoles+"/{name}", path)
	return trace.Wrap(err, "deleting role %q", name)
}
