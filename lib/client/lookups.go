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

const routeLookups = "/services/data/lookup-table-files"

// ListLookupTables returns lookup table files with the paging total.
func (c *Client) ListLookupTables(ctx context.Context, page Page) ([]LookupTable, int, error) {
	body, err := c.get(ctx, routeLookups, routeLookups, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing lookup tables")
	}
	lookups, total, err := decodeEntries[LookupTable](body)
	return lookups, total, trace.Wrap(err)
}

// GetLookupTable returns one lookup table file by name.
func (c *Client) GetLookupTable(ctx context.Context, name string) (*LookupTable, error) {
	if name == "" {
		return nil, trace.BadParameter("missing lookup table name")
	}
	path := joinPath("services", "data", "lookup-table-files", EncodePathSegment(name))
	body, err := c.get(ctx, routeLookups+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting lookup table %q", name)
	}
	return decodeFirstEntry[LookupTable](body, "lookup table "+name)
}

// DeleteLookupTable removes a lookup table file.
func (c *Client) DeleteLookupTable(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing lookup table name")
	}
	path := joinPath("services", "data", "lookup-table-files", EncodePathSegment(name))
	_, err := c.delete(ctx, routeLookups+"/{name}", path)
	return trace.Wrap(err, "deleting lookup table %q", name)
}
