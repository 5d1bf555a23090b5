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
	"sort"

	"github.com/gravitational/trace"
)

const (
	routeServerInfo    = "/services/server/info"
	routeHealthDetails = "/services/server/health/splunkd/details"
	routeSearchPeers   = "/services/search/distributed/peers"
	routeClusterConfig = "/services/cluster/config"
)

// GetServerInfo returns splunkd's own description of itself.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	body, err := c.get(ctx, routeServerInfo, routeServerInfo, nil)
	if err != nil {
		return nil, trace.Wrap(err, "fetching server info")
	}
	return decodeFirstEntry[ServerInfo](body, "server info")
}

// healthNode mirrors the recursive shape of the health report tree.
type healthNode struct {
	Health   string                     `json:"health"`
	Features map[string]json.RawMessage `json:"features"`
}

// GetHealthReport returns the splunkd health report with the feature
// tree flattened to dotted paths, sorted for stable output.
func (c *Client) GetHealthReport(ctx context.Context) (*HealthCheckOutput, error) {
	body, err := c.get(ctx, routeHealthDetails, routeHealthDetails, nil)
	if err != nil {
		return nil, trace.Wrap(err, "fetching health report")
	}

	var env envelope[healthNode]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, trace.Wrap(err, "parsing health report")
	}
	if len(env.Entry) == 0 {
		return nil, trace.NotFound("health report not available")
	}

	root := env.Entry[0].Content
	out := &HealthCheckOutput{
		Name:   env.Entry[0].Name,
		Health: root.Health,
	}
	for name, raw := range root.Features {
		flattenHealth(name, raw, &out.Features)
	}
	sort.Slice(out.Features, func(i, j int) bool {
		return out.Features[i].Name < out.Features[j].Name
	})
	return out, nil
}

func flattenHealth(path string, raw json.RawMessage, out *[]FeatureHealth) {
	var node healthNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return
	}
	if node.Health != "" {
		*out = append(*out, FeatureHealth{Name: path, Health: node.Health})
	}
	for name, child := range node.Features {
		flattenHealth(path+"."+name, child, out)
	}
}

// ListSearchPeers returns distributed search peers.
func (c *Client) ListSearchPeers(ctx context.Context, page Page) ([]SearchPeer, int, error) {
	body, err := c.get(ctx, routeSearchPeers, routeSearchPeers, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing search peers")
	}
	peers, total, err := decodeEntries[SearchPeer](body)
	return peers, total, trace.Wrap(err)
}

// ClusterConfig is the indexer clustering configuration of this node.
type ClusterConfig struct {
	Name              string  `json:"name"`
	Mode              *string `json:"mode,omitempty"`
	ManagerURI        *string `json:"manager_uri,omitempty"`
	ReplicationFactor *int64  `json:"replication_factor,omitempty"`
	SearchFactor      *int64  `json:"search_factor,omitempty"`
	Disabled          *bool   `json:"disabled,omitempty"`
}

func (cc *ClusterConfig) setName(n string) { cc.Name = n }

// GetClusterConfig returns the indexer clustering configuration. A
// standalone instance reports mode "disabled" rather than an error.
func (c *Client) GetClusterConfig(ctx context.Context) (*ClusterConfig, error) {
	body, err := c.get(ctx, routeClusterConfig, routeClusterConfig, nil)
	if err != nil {
		return nil, trace.Wrap(err, "fetching cluster config")
	}
	return decodeFirstEntry[ClusterConfig](body, "cluster config")
}
