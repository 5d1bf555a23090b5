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
	"encoding/json"

	"github.com/gravitational/trace"
)

const routeKvStoreStatus = "/services/kvstore/status"

// GetKvStoreStatus returns the KV store health summary. The status
// endpoint nests its fields under a "current" object rather than flat
// entry content, so it gets its own decode.
func (c *Client) GetKvStoreStatus(ctx context.Context) (*KvStoreStatus, error) {
	body, err := c.get(ctx, routeKvStoreStatus, routeKvStoreStatus, nil)
	if err != nil {
		return nil, trace.Wrap(err, "fetching kvstore status")
	}

	var env envelope[struct {
		Current KvStoreStatus `json:"current"`
	}]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, trace.Wrap(err, "parsing kvstore status")
	}
	if len(env.Entry) == 0 {
		return nil, trace.NotFound("kvstore status not reported")
	}
	status := env.Entry[0].Content.Current
	status.Name = env.Entry[0].Name
	return &status, nil
}
