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

	"github.com/splunkctl/splunkctl/lib/defaults"
)

const routeConfigs = "/services/configs/conf-{file}"

// ListConfigStanzas returns the stanzas of one .conf file.
func (c *Client) ListConfigStanzas(ctx context.Context, file string, page Page) ([]ConfigStanza, int, error) {
	if file == "" {
		return nil, 0, trace.BadParameter("missing config file name")
	}
	path := joinPath("services", "configs", "conf-"+EncodePathSegment(file))
	body, err := c.get(ctx, routeConfigs, path, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing stanzas of %s.conf", file)
	}
	stanzas, total, err := decodeStanzas(body, file)
	return stanzas, total, trace.Wrap(err)
}

// GetConfigStanza returns a single stanza of a .conf file.
func (c *Client) GetConfigStanza(ctx context.Context, file, stanza string) (*ConfigStanza, error) {
	if file == "" || stanza == "" {
		return nil, trace.BadParameter("config file and stanza are both required")
	}
	path := joinPath("services", "configs", "conf-"+EncodePathSegment(file), EncodePathSegment(stanza))
	body, err := c.get(ctx, routeConfigs+"/{stanza}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting stanza [%s] of %s.conf", stanza, file)
	}
	stanzas, _, err := decodeStanzas(body, file)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if len(stanzas) == 0 {
		return nil, trace.NotFound("stanza [%s] not found in %s.conf", stanza, file)
	}
	return &stanzas[0], nil
}

// decodeStanzas parses a conf envelope. Stanza settings are arbitrary
// key/value pairs, so content is decoded as a raw map and scalars are
// flattened to strings; the eai:* bookkeeping keys are dropped.
func decodeStanzas(body []byte, file string) ([]ConfigStanza, int, error) {
	var env envelope[map[string]json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, 0, trace.Wrap(err, "parsing stanzas of %s.conf", file)
	}
	stanzas := make([]ConfigStanza, 0, len(env.Entry))
	for _, e := range env.Entry {
		settings := make(map[string]string, len(e.Content))
		for k, v := range e.Content {
			if len(k) > 4 && k[:4] == "eai:" {
				continue
			}
			settings[k] = flattenJSONValue(v)
		}
		stanzas = append(stanzas, ConfigStanza{
			Name:     e.Name,
			File:     file,
			Settings: settings,
		})
	}
	return stanzas, env.Paging.Total, nil
}

// ConfigAggregate is the result of walking the config file whitelist.
// Failures are per-file; one broken file never hides the others.
type ConfigAggregate struct {
	// Stanzas maps config file name to its stanzas.
	Stanzas map[string][]ConfigStanza
	// Errors maps config file name to the error that kept its stanzas
	// out of the aggregate.
	Errors map[string]error
}

// ListAllConfigStanzas walks the curated whitelist of .conf files and
// collects stanzas per file, isolating per-file failures.
func (c *Client) ListAllConfigStanzas(ctx context.Context) (*ConfigAggregate, error) {
	agg := &ConfigAggregate{
		Stanzas: make(map[string][]ConfigStanza),
		Errors:  make(map[string]error),
	}
	for _, file := range defaults.ConfigFileWhitelist {
		if ctx.Err() != nil {
			return nil, trace.Wrap(ctx.Err())
		}
		stanzas, _, err := c.ListConfigStanzas(ctx, file, PageAll)
		if err != nil {
			agg.Errors[file] = err
			continue
		}
		agg.Stanzas[file] = stanzas
	}
	return agg, nil
}

// ListConfigFiles summarizes the whitelist as (file, stanza count)
// records using the aggregate walk.
func (c *Client) ListConfigFiles(ctx context.Context) ([]ConfigFile, *ConfigAggregate, error) {
	agg, err := c.ListAllConfigStanzas(ctx)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}
	files := make([]ConfigFile, 0, len(agg.Stanzas))
	for _, name := range defaults.ConfigFileWhitelist {
		if stanzas, ok := agg.Stanzas[name]; ok {
			files = append(files, ConfigFile{Name: name, StanzaCount: len(stanzas)})
		}
	}
	return files, agg, nil
}
