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
	"strconv"

	"github.com/gravitational/trace"
)

const routeIndexes = "/services/data/indexes"

// ListIndexes returns data indexes with the paging total.
func (c *Client) ListIndexes(ctx context.Context, page Page) ([]Index, int, error) {
	body, err := c.get(ctx, routeIndexes, routeIndexes, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing indexes")
	}
	indexes, total, err := decodeEntries[Index](body)
	return indexes, total, trace.Wrap(err)
}

// GetIndex returns a single index by name.
func (c *Client) GetIndex(ctx context.Context, name string) (*Index, error) {
	if name == "" {
		return nil, trace.BadParameter("missing index name")
	}
	path := joinPath("services", "data", "indexes", EncodePathSegment(name))
	body, err := c.get(ctx, routeIndexes+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting index %q", name)
	}
	return decodeFirstEntry[Index](body, "index "+name)
}

// CreateIndexParams are the optional knobs for CreateIndex.
type CreateIndexParams struct {
	MaxTotalDataSizeMB     int64
	FrozenTimePeriodInSecs int64
	DataType               string
}

// CreateIndex creates a data index.
func (c *Client) CreateIndex(ctx context.Context, name string, params CreateIndexParams) (*Index, error) {
	if name == "" {
		return nil, trace.BadParameter("missing index name")
	}
	form := url.Values{"name": []string{name}}
	if params.MaxTotalDataSizeMB > 0 {
		form.Set("maxTotalDataSizeMB", strconv.FormatInt(params.MaxTotalDataSizeMB, 10))
	}
	if params.FrozenTimePeriodInSecs > 0 {
		form.Set("frozenTimePeriodInSecs", strconv.FormatInt(params.FrozenTimePeriodInSecs, 10))
	}
	if params.DataType != "" {
		form.Set("datatype", params.DataType)
	}
	body, err := c.postForm(ctx, routeIndexes, routeIndexes, form)
	if err != nil {
		return nil, trace.Wrap(err, "creating index %q", name)
	}
	return decodeFirstEntry[Index](body, "index "+name)
}

// UpdateIndex modifies index settings by form fields.
func (c *Client) UpdateIndex(ctx context.Context, name string, settings url.Values) (*Index, error) {
	if name == "" {
		return nil, trace.BadParameter("missing index name")
	}
	path := joinPath("services", "data", "indexes", EncodePathSegment(name))
	body, err := c.postForm(ctx, routeIndexes+"/{name}", path, settings)
	if err != nil {
		return nil, trace.Wrap(err, "updating index %q", name)
	}
	return decodeFirstEntry[Index](body, "index "+name)
}

// DeleteIndex removes an index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing index name")
	}
	path := joinPath("services", "data", "indexes", EncodePathSegment(name))
	_, err := c.delete(ctx, routeIndexes+"/{name}", path)
	return trace.Wrap(err, "deleting index %q", name)
}

// EnableIndex re-enables a disabled index.
func (c *Client) EnableIndex(ctx context.Context, name string) error {
	return trace.Wrap(c.toggleIndex(ctx, name, "enable"))
}

// DisableIndex disables an index.
func (c *Client) DisableIndex(ctx context.Context, name string) error {
	return trace.Wrap(c.toggleIndex(ctx, name, "disable"))
}

func (c *Client) toggleIndex(ctx context.Context, name, action string) error {
	if name == "" {
		return trace.BadParameter("missing index name")
	}
	path := joinPath("services", "data", "indexes", EncodePathSegment(name), action)
	_, err := c.postForm(ctx, routeIndexes+"/{name}/"+action, path, url.Values{})
	return trace.Wrap(err, "%s index %q", action, name)
}
