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
	"net/url"

	"github.com/gravitational/trace"
)

const (
	routeSavedSearches = "/services/saved/searches"
	routeFiredAlerts   = "/services/alerts/fired_alerts"
)

// ListSavedSearches returns saved searches with the paging total.
func (c *Client) ListSavedSearches(ctx context.Context, page Page) ([]SavedSearch, int, error) {
	body, err := c.get(ctx, routeSavedSearches, routeSavedSearches, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing saved searches")
	}
	searches, total, err := decodeEntries[SavedSearch](body)
	return searches, total, trace.Wrap(err)
}

// GetSavedSearch returns one saved search by name.
func (c *Client) GetSavedSearch(ctx context.Context, name string) (*SavedSearch, error) {
	if name == "" {
		return nil, trace.BadParameter("missing saved search name")
	}
	path := joinPath("services", "saved", "searches", EncodePathSegment(name))
	body, err := c.get(ctx, routeSavedSearches+"/{name}", path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting saved search %q", name)
	}
	return decodeFirstEntry[SavedSearch](body, "saved search "+name)
}

// CreateSavedSearch creates a saved search.
func (c *Client) CreateSavedSearch(ctx context.Context, name, query string, extra url.Values) (*SavedSearch, error) {
	if name == "" || query == "" {
		return nil, trace.BadParameter("saved search requires both name and query")
	}
	form := url.Values{}
	for k, v := range extra {
		form[k] = v
	}
	form.Set("name", name)
	form.Set("search", query)
	body, err := c.postForm(ctx, routeSavedSearches, routeSavedSearches, form)
	if err != nil {
		return nil, trace.Wrap(err, "creating saved search %q", name)
	}
	return decodeFirstEntry[SavedSearch](body, "saved search "+name)
}

// UpdateSavedSearch modifies a saved search.
func (c *Client) UpdateSavedSearch(ctx context.Context, name string, settings url.Values) (*SavedSearch, error) {
	if name == "" {
		return nil, trace.BadParameter("missing saved search name")
	}
	path := joinPath("services", "saved", "searches", EncodePathSegment(name))
	body, err := c.postForm(ctx, routeSavedSearches+"/{name}", path, settings)
	if err != nil {
		return nil, trace.Wrap(err, "updating saved search %q", name)
	}
	return decodeFirstEntry[SavedSearch](body, "saved search "+name)
}

// DeleteSavedSearch removes a saved search.
func (c *Client) DeleteSavedSearch(ctx context.Context, name string) error {
	if name == "" {
		return trace.BadParameter("missing saved search name")
	}
	path := joinPath("services", "saved", "searches", EncodePathSegment(name))
	_, err := c.delete(ctx, routeSavedSearches+"/{name}", path)
	return trace.Wrap(err, "deleting saved search %q", name)
}

// DispatchSavedSearch runs a saved search now and returns the job SID.
func (c *Client) DispatchSavedSearch(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", trace.BadParameter("missing saved search name")
	}
	path := joinPath("services", "saved", "searches", EncodePathSegment(name), "dispatch")
	body, err := c.postForm(ctx, routeSavedSearches+"/{name}/dispatch", path, url.Values{})
	if err != nil {
		return "", trace.Wrap(err, "dispatching saved search %q", name)
	}
	var parsed struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", trace.Wrap(err)
	}
	return parsed.Sid, nil
}

// ListFiredAlerts returns triggered alerts.
func (c *Client) ListFiredAlerts(ctx context.Context, page Page) ([]FiredAlert, int, error) {
	body, err := c.get(ctx, routeFiredAlerts, routeFiredAlerts, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing fired alerts")
	}
	alerts, total, err := decodeEntries[FiredAlert](body)
	return alerts, total, trace.Wrap(err)
}
