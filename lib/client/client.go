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

// Package client implements the Splunk Enterprise REST API client shared
// by the CLI and the TUI. One method per endpoint family; every call
// authenticates, retries transient failures with jittered exponential
// backoff, respects the per-route circuit breaker, records metrics and
// returns either typed records or a classified error.
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"github.com/splunkctl/splunkctl/lib/client/breaker"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/utils"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the splunkd management URL, e.g. https://host:8089.
	BaseURL string
	// Auth supplies the Authorization header strategy.
	Auth AuthStrategy
	// SkipVerify disables TLS certificate verification.
	SkipVerify bool
	// Timeout bounds a single client call, retries included.
	Timeout time.Duration
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// Metrics receives per-route observations; nil means no-op.
	Metrics MetricsCollector
	// Breaker is the optional per-route circuit breaker registry.
	Breaker *breaker.Registry
	// Clock overrides time in tests.
	Clock clockwork.Clock
	// Transport overrides the HTTP transport in tests.
	Transport http.RoundTripper
}

// CheckAndSetDefaults validates the config.
func (c *Config) CheckAndSetDefaults() error {
	if c.BaseURL == "" {
		return trace.BadParameter("missing parameter BaseURL")
	}
	if c.Auth == nil {
		return trace.BadParameter("missing parameter Auth")
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.RequestTimeout
	}
	if c.MaxRetries < 0 {
		return trace.BadParameter("MaxRetries must not be negative")
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.Metrics == nil {
		c.Metrics = NewNopCollector()
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Client talks to a single splunkd instance. Safe for concurrent use:
// the only mutable state is the session token cache and the circuit
// breaker registry, both behind short exclusive sections.
type Client struct {
	cfg     Config
	baseURL *url.URL
	http    *http.Client
	jitter  utils.Jitter
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, trace.BadParameter("invalid base URL %q: %v", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, trace.BadParameter("base URL %q must use http or https", cfg.BaseURL)
	}

	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.SkipVerify {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		transport = t
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Transport: transport},
		jitter:  utils.NewFullJitter(),
	}, nil
}

// BaseURL returns the configured management URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// AuthStrategyName names the configured auth strategy for diagnostics.
func (c *Client) AuthStrategyName() string {
	return c.cfg.Auth.Name()
}

// request describes one logical API call.
type request struct {
	method string
	// route is the normalized template used for metrics and circuit
	// breaker keying, e.g. "/services/data/indexes/{name}".
	route string
	// path is the concrete path with user segments already
	// percent-encoded.
	path  string
	query url.Values
	// form is the URL-encoded POST body; nil for GET/DELETE.
	form url.Values
	// body overrides form with a raw payload.
	body        []byte
	contentType string
	// wantXML suppresses the output_mode=json query parameter for the
	// few endpoints that only speak XML.
	wantXML bool
}

var routeVariableRE = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)

// NormalizeRoute collapses percent-encoded variable segments so metric
// label cardinality stays bounded when only the template is unknown.
func NormalizeRoute(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if routeVariableRE.MatchString(p) {
			parts[i] = "{name}"
		}
	}
	return strings.Join(parts, "/")
}

// do executes a request with auth, retries, breaker and metrics, and
// returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	route := req.route
	if route == "" {
		route = NormalizeRoute(req.path)
	}

	var brk *breaker.Breaker
	if c.cfg.Breaker != nil {
		brk = c.cfg.Breaker.Get(route)
	}

	backoff, err := utils.NewExponential(utils.ExponentialConfig{
		Base:   defaults.RetryBase,
		Cap:    defaults.RetryCap,
		Jitter: c.jitter,
		Clock:  c.cfg.Clock,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	reloggedIn := false
	skipBackoff := false
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.cfg.Metrics.RecordRetry(route, req.method, attempt)
			if skipBackoff {
				// The previous iteration already waited out Retry-After;
				// stacking a backoff delay on top would overshoot what
				// the server asked for.
				skipBackoff = false
			} else {
				select {
				case <-backoff.After():
					backoff.Inc()
				case <-ctx.Done():
					c.cfg.Metrics.RecordError(route, req.method, ErrorCategory(ctx.Err()))
					return nil, trace.Wrap(ctx.Err())
				}
			}
		}

		if brk != nil {
			if err := brk.Allow(); err != nil {
				c.cfg.Metrics.RecordError(route, req.method, "circuit_open")
				return nil, trace.Wrap(err)
			}
		}

		body, status, retryAfter, err := c.attempt(ctx, req, route)
		if err == nil {
			if brk != nil {
				brk.Success()
			}
			return body, nil
		}
		lastErr = err

		// A 401 invalidates the cached session once; the immediate
		// follow-up attempt re-logs in. A second 401 is terminal.
		if status == http.StatusUnauthorized && !reloggedIn {
			reloggedIn = true
			c.cfg.Auth.Invalidate()
			if brk != nil {
				brk.Success() // auth expiry is not an endpoint fault
			}
			// Do not consume a retry slot for re-auth.
			attempt--
			continue
		}

		retryable := status == 0 && IsTransport(err) && ctx.Err() == nil
		if status != 0 {
			retryable = retryableStatus(status)
		}
		if brk != nil {
			if retryable {
				brk.Failure()
			} else {
				brk.Success()
			}
		}
		if !retryable || ctx.Err() != nil {
			c.cfg.Metrics.RecordError(route, req.method, ErrorCategory(err))
			return nil, trace.Wrap(err)
		}

		if retryAfter > 0 {
			if retryAfter > defaults.RetryAfterCap {
				retryAfter = defaults.RetryAfterCap
			}
			if deadline, ok := ctx.Deadline(); ok && c.cfg.Clock.Now().Add(retryAfter).After(deadline) {
				c.cfg.Metrics.RecordError(route, req.method, "timeout")
				return nil, trace.Wrap(err, "Retry-After %v exceeds the request deadline", retryAfter)
			}
			select {
			case <-c.cfg.Clock.After(retryAfter):
			case <-ctx.Done():
				c.cfg.Metrics.RecordError(route, req.method, ErrorCategory(ctx.Err()))
				return nil, trace.Wrap(ctx.Err())
			}
			// The header already told us when to come back.
			backoff.Reset()
			skipBackoff = true
		}
	}

	c.cfg.Metrics.RecordError(route, req.method, ErrorCategory(lastErr))
	return nil, trace.Wrap(lastErr)
}

// attempt issues one HTTP request. Returns the body on 2xx, or the HTTP
// status (0 for transport errors) and a classified error.
func (c *Client) attempt(ctx context.Context, req request, route string) (body []byte, status int, retryAfter time.Duration, err error) {
	u := *c.baseURL
	u.RawPath = req.path
	decoded, decodeErr := url.PathUnescape(req.path)
	if decodeErr != nil {
		return nil, 0, 0, trace.BadParameter("invalid request path %q", req.path)
	}
	u.Path = decoded

	query := url.Values{}
	for k, vs := range req.query {
		query[k] = vs
	}
	if !req.wantXML {
		query.Set("output_mode", "json")
	}
	u.RawQuery = query.Encode()

	var reqBody io.Reader
	contentType := req.contentType
	switch {
	case req.body != nil:
		reqBody = strings.NewReader(string(req.body))
	case req.form != nil:
		reqBody = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), reqBody)
	if err != nil {
		return nil, 0, 0, trace.Wrap(err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if err := c.cfg.Auth.Authorize(ctx, c, httpReq); err != nil {
		return nil, 0, 0, trace.Wrap(err)
	}

	c.cfg.Metrics.RecordRequest(route, req.method)
	start := c.cfg.Clock.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.cfg.Metrics.RecordRequestDuration(route, req.method, c.cfg.Clock.Since(start), 0)
		if ctx.Err() != nil {
			return nil, 0, 0, trace.Wrap(ctx.Err())
		}
		return nil, 0, 0, trace.ConnectionProblem(err, "request to %s failed", redactURL(&u))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	c.cfg.Metrics.RecordRequestDuration(route, req.method, c.cfg.Clock.Since(start), resp.StatusCode)
	if readErr != nil {
		if ctx.Err() != nil {
			return nil, 0, 0, trace.Wrap(ctx.Err())
		}
		return nil, 0, 0, trace.ConnectionProblem(readErr, "reading response from %s", redactURL(&u))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:    resp.StatusCode,
			URL:       redactURL(&u),
			Message:   firstSplunkMessage(body),
			RequestID: resp.Header.Get("X-Splunk-Request-Id"),
		}
		return nil, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), c.cfg.Clock), trace.Wrap(apiErr)
	}
	return body, resp.StatusCode, 0, nil
}

// redactURL strips credentials and query values from a URL for error
// messages and metrics.
func redactURL(u *url.URL) string {
	clean := *u
	clean.User = nil
	clean.RawQuery = ""
	return clean.String()
}

// firstSplunkMessage pulls the first message text out of an error body.
func firstSplunkMessage(body []byte) string {
	var parsed struct {
		Messages []splunkMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.Messages) == 0 {
		return ""
	}
	return parsed.Messages[0].Text
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string, clock clockwork.Clock) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(clock.Now())
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}

// get issues a GET for an entry-envelope endpoint.
func (c *Client) get(ctx context.Context, route, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, route: route, path: path, query: query})
}

// postForm issues a form-encoded POST.
func (c *Client) postForm(ctx context.Context, route, path string, form url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodPost, route: route, path: path, form: form})
}

// delete issues a DELETE.
func (c *Client) delete(ctx context.Context, route, path string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodDelete, route: route, path: path})
}

// Page carries the count/offset paginator most list endpoints take.
// A zero Count falls back to the server default page size; a negative
// Count asks for everything (splunkd's count=0).
type Page struct {
	Count  int
	Offset int
}

// PageAll requests every entry in one response.
var PageAll = Page{Count: -1}

func (p Page) apply(query url.Values) url.Values {
	if query == nil {
		query = url.Values{}
	}
	count := p.Count
	switch {
	case count < 0:
		count = 0
	case count == 0:
		count = 30
	}
	query.Set("count", strconv.Itoa(count))
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	return query
}
