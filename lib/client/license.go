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

	"github.com/gravitational/trace"
)

const (
	routeLicenseUsage  = "/services/licenser/usage"
	routeLicensePools  = "/services/licenser/pools"
	routeLicenseStacks = "/services/licenser/stacks"
)

// GetLicenseUsage returns the daily license usage report.
func (c *Client) GetLicenseUsage(ctx context.Context) ([]LicenseUsage, error) {
	body, err := c.get(ctx, routeLicenseUsage, routeLicenseUsage, nil)
	if err != nil {
		return nil, trace.Wrap(err, "fetching license usage")
	}
	usage, _, err := decodeEntries[LicenseUsage](body)
	return usage, trace.Wrap(err)
}

// ListLicensePools returns license pools with the paging total.
func (c *Client) ListLicensePools(ctx context.Context, page Page) ([]LicensePool, int, error) {
	body, err := c.get(ctx, routeLicensePools, routeLicensePools, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing license pools")
	}
	pools, total, err := decodeEntries[LicensePool](body)
	return pools, total, trace.Wrap(err)
}

// ListLicenseStacks returns license stacks with the paging total.
func (c *Client) ListLicenseStacks(ctx context.Context, page Page) ([]LicenseStack, int, error) {
	body, err := c.get(ctx, routeLicenseStacks, routeLicenseStacks, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing license stacks")
	}
	stacks, total, err := decodeEntries[LicenseStack](body)
	return stacks, total, trace.Wrap(err)
}
