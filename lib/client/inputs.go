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

// inputKinds are the data input families walked by ListInputs.
var inputKinds = []string{"monitor", "tcp/raw", "udp", "script", "http"}

const routeInputs = "/services/data/inputs"

// ListInputs walks the input kinds and returns all stanzas, tagging each
// record with its kind. A kind that is absent on the server (404) is
// skipped rather than failing the whole listing.
func (c *Client) ListInputs(ctx context.Context, page Page) ([]Input, int, error) {
	var all []Input
	total := 0
	for _, kind := range inputKinds {
		path := routeInputs + "/" + kind
		body, err := c.get(ctx, routeInputs+"/{kind}", path, page.apply(nil))
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, 0, trace.Wrap(err, "listing %s inputs", kind)
		}
		inputs, kindTotal, err := decodeEntries[Input](body)
		if err != nil {
			return nil, 0, trace.Wrap(err)
		}
		for i := range inputs {
			inputs[i].Kind = kind
		}
		all = append(all, inputs...)
		total += kindTotal
	}
	return all, total, nil
}

// EnableInput enables a data input stanza of the given kind.
func (c *Client) EnableInput(ctx context.Context, kind, name string) error {
	return trace.Wrap(c.toggleInput(ctx, kind, name, "enable"))
}

// DisableInput disables a data input stanza of the given kind.
func (c *Client) DisableInput(ctx context.Context, kind, name string) error {
	return trace.Wrap(c.toggleInput(ctx, kind, name, "disable"))
}

func (c *Client) toggleInput(ctx context.Context, kind, name, action string) error {
	if kind == "" || name == "" {
		return trace.BadParameter("input kind and name are both required")
	}
	path := routeInputs + "/" + kind + "/" + EncodePathSegment(name) + "/" + action
	_, err := c.postForm(ctx, routeInputs+"/{kind}/{name}/"+action, path, url.Values{})
	return trace.Wrap(err, "%s %s input %q", action, kind, name)
}

const routeForwarders = "/services/deployment/server/clients"

// ListForwarders returns deployment clients phoning home to this server.
func (c *Client) ListForwarders(ctx context.Context, page Page) ([]Forwarder, int, error) {
	body, err := c.get(ctx, routeForwarders, routeForwarders, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing forwarders")
	}
	forwarders, total, err := decodeEntries[Forwarder](body)
	return forwarders, total, trace.Wrap(err)
}
