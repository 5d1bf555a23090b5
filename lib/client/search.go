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
	"strconv"
	"strings"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/defaults"
)

const (
	routeSearchJobs = "/services/search/jobs"
	routeSearchJob  = "/services/search/jobs/{sid}"
)

// SearchParams configures a new search job.
type SearchParams struct {
	// Query is the SPL query; a leading "search" verb is added when the
	// query does not start with a generating command.
	Query string
	// EarliestTime and LatestTime bound the search window.
	EarliestTime string
	// LatestTime is the window end.
	LatestTime string
	// MaxResults caps the result count server-side.
	MaxResults int
	// ExecTime bounds server-side execution in seconds. Zero means the
	// server default.
	ExecTime int
}

// normalizeQuery prepends the search verb unless the query already
// starts with one or with a generating pipe command.
func normalizeQuery(query string) string {
	trimmed := strings.TrimSpace(query)
	if strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "search ") {
		return trimmed
	}
	return "search " + trimmed
}

// CreateSearchJob submits a search and returns its SID.
func (c *Client) CreateSearchJob(ctx context.Context, params SearchParams) (string, error) {
	if strings.TrimSpace(params.Query) == "" {
		return "", trace.BadParameter("missing search query")
	}
	form := url.Values{"search": []string{normalizeQuery(params.Query)}}
	if params.EarliestTime != "" {
		form.Set("earliest_time", params.EarliestTime)
	}
	if params.LatestTime != "" {
		form.Set("latest_time", params.LatestTime)
	}
	if params.MaxResults > 0 {
		form.Set("max_count", strconv.Itoa(params.MaxResults))
	}
	if params.ExecTime > 0 {
		form.Set("timeout", strconv.Itoa(params.ExecTime))
	}
	body, err := c.postForm(ctx, routeSearchJobs, routeSearchJobs, form)
	if err != nil {
		return "", trace.Wrap(err, "creating search job")
	}
	var parsed struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", trace.Wrap(err, "parsing search job response")
	}
	if parsed.Sid == "" {
		return "", trace.BadParameter("search job response carried no sid")
	}
	return parsed.Sid, nil
}

// GetJobStatus fetches the current status of a job by SID.
func (c *Client) GetJobStatus(ctx context.Context, sid string) (*SearchJobStatus, error) {
	if sid == "" {
		return nil, trace.BadParameter("missing search job sid")
	}
	path := joinPath("services", "search", "jobs", EncodePathSegment(sid))
	body, err := c.get(ctx, routeSearchJob, path, nil)
	if err != nil {
		return nil, trace.Wrap(err, "getting status of job %q", sid)
	}
	return decodeFirstEntry[SearchJobStatus](body, "search job "+sid)
}

// ListJobs returns the caller's search jobs.
func (c *Client) ListJobs(ctx context.Context, page Page) ([]SearchJobStatus, int, error) {
	body, err := c.get(ctx, routeSearchJobs, routeSearchJobs, page.apply(nil))
	if err != nil {
		return nil, 0, trace.Wrap(err, "listing search jobs")
	}
	jobs, total, err := decodeEntries[SearchJobStatus](body)
	return jobs, total, trace.Wrap(err)
}

// DeleteJob cancels and removes a job server-side.
func (c *Client) DeleteJob(ctx context.Context, sid string) error {
	if sid == "" {
		return trace.BadParameter("missing search job sid")
	}
	path := joinPath("services", "search", "jobs", EncodePathSegment(sid))
	_, err := c.delete(ctx, routeSearchJob, path)
	return trace.Wrap(err, "deleting job %q", sid)
}

// FinalizeJob stops a running job but keeps its partial results.
func (c *Client) FinalizeJob(ctx context.Context, sid string) error {
	if sid == "" {
		return trace.BadParameter("missing search job sid")
	}
	path := joinPath("services", "search", "jobs", EncodePathSegment(sid), "control")
	_, err := c.postForm(ctx, routeSearchJob+"/control", path, url.Values{"action": []string{"finalize"}})
	return trace.Wrap(err, "finalizing job %q", sid)
}

// GetSearchResults fetches one page of results for a finished job.
func (c *Client) GetSearchResults(ctx context.Context, sid string, page Page) (*SearchResults, error) {
	if sid == "" {
		return nil, trace.BadParameter("missing search job sid")
	}
	path := joinPath("services", "search", "jobs", EncodePathSegment(sid), "results")
	body, err := c.get(ctx, routeSearchJob+"/results", path, page.apply(nil))
	if err != nil {
		return nil, trace.Wrap(err, "fetching results of job %q", sid)
	}

	var parsed struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
		Results []map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, trace.Wrap(err, "parsing results of job %q", sid)
	}

	results := &SearchResults{Offset: page.Offset, Total: -1}
	for _, f := range parsed.Fields {
		results.Fields = append(results.Fields, f.Name)
	}
	for _, raw := range parsed.Results {
		row := make(map[string]string, len(raw))
		for k, v := range raw {
			row[k] = flattenJSONValue(v)
		}
		results.Rows = append(results.Rows, row)
	}
	return results, nil
}

// flattenJSONValue renders a result cell as a string. Multivalue fields
// collapse to comma-separated text.
func flattenJSONValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ",")
	}
	return strings.Trim(string(raw), `"`)
}

// ProgressFunc receives job completion as a fraction in [0,1].
type ProgressFunc func(fraction float64)

// SearchWithProgress runs a search to completion: submit, poll status at
// an adaptive interval (starting fast, doubling while progress is
// unchanged), then fetch the first page of results. The progress
// callback is optional. Cancelling ctx abandons the poll promptly and
// opportunistically deletes the job server-side.
func (c *Client) SearchWithProgress(ctx context.Context, params SearchParams, progress ProgressFunc) (*SearchResults, string, error) {
	sid, err := c.CreateSearchJob(ctx, params)
	if err != nil {
		return nil, "", trace.Wrap(err)
	}

	interval := defaults.SearchPollInitial
	lastProgress := -1.0
	for {
		status, err := c.GetJobStatus(ctx, sid)
		if err != nil {
			return nil, sid, trace.Wrap(err)
		}
		fraction := 0.0
		if status.DoneProgress != nil {
			fraction = *status.DoneProgress
		}
		if progress != nil {
			progress(fraction)
		}
		if status.IsFailed != nil && *status.IsFailed {
			return nil, sid, trace.Errorf("search job %q failed server-side", sid)
		}
		if status.IsDone != nil && *status.IsDone {
			break
		}

		// Back off while the job is not moving, reset when it is.
		if fraction == lastProgress {
			interval *= 2
			if interval > defaults.SearchPollMax {
				interval = defaults.SearchPollMax
			}
		} else {
			interval = defaults.SearchPollInitial
			lastProgress = fraction
		}

		select {
		case <-c.cfg.Clock.After(interval):
		case <-ctx.Done():
			// Best effort: do not leave the job running server-side.
			cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*defaults.SearchPollInitial)
			_ = c.DeleteJob(cleanupCtx, sid)
			cancel()
			return nil, sid, trace.Wrap(ctx.Err())
		}
	}

	count := params.MaxResults
	if count <= 0 {
		count = defaults.MaxResults
	}
	results, err := c.GetSearchResults(ctx, sid, Page{Count: count})
	if err != nil {
		return nil, sid, trace.Wrap(err)
	}
	return results, sid, nil
}

// ValidateQuery asks the SPL parser to check a query without running it.
// Returned messages carry parser errors and warnings; an empty slice
// means the query parsed cleanly.
func (c *Client) ValidateQuery(ctx context.Context, query string) ([]string, error) {
	if len(strings.TrimSpace(query)) < defaults.ValidateMinQueryLength {
		return nil, nil
	}
	form := url.Values{
		"q":          []string{normalizeQuery(query)},
		"parse_only": []string{"t"},
	}
	body, err := c.postForm(ctx, "/services/search/parser", "/services/search/parser", form)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Status == 400 {
			if apiErr.Message != "" {
				return []string{apiErr.Message}, nil
			}
			return []string{"query failed to parse"}, nil
		}
		return nil, trace.Wrap(err, "validating query")
	}
	var parsed struct {
		Messages []splunkMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, trace.Wrap(err)
	}
	var msgs []string
	for _, m := range parsed.Messages {
		if m.Type == "ERROR" || m.Type == "WARN" {
			msgs = append(msgs, m.Text)
		}
	}
	return msgs, nil
}

// InternalLogs fetches a page of the _internal index, newest first. The
// streaming formatters consume successive pages as batches.
func (c *Client) InternalLogs(ctx context.Context, filter string, page Page) (*SearchResults, error) {
	query := "search index=_internal"
	if filter != "" {
		query += " " + filter
	}
	query += " | sort -_time | table _time, log_level, component, message"
	results, _, err := c.SearchWithProgress(ctx, SearchParams{
		Query:        query,
		EarliestTime: "-15m",
		LatestTime:   "now",
		MaxResults:   page.Count,
	}, nil)
	return results, trace.Wrap(err, "fetching internal logs")
}
