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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
)

// HecConfig configures a HecClient.
type HecConfig struct {
	// BaseURL is the collector URL, e.g. https://host:8088.
	BaseURL string
	// Token is the HEC token. Sent as "Authorization: Splunk <token>",
	// a different scheme from the management API's Bearer tokens.
	Token secret.Secret
	// SkipVerify disables TLS certificate verification.
	SkipVerify bool
	// Timeout bounds a single submission.
	Timeout time.Duration
	// Transport overrides the HTTP transport in tests.
	Transport http.RoundTripper
}

// CheckAndSetDefaults validates the config.
func (c *HecConfig) CheckAndSetDefaults() error {
	if c.BaseURL == "" {
		return trace.BadParameter("missing parameter BaseURL")
	}
	if c.Token.IsZero() {
		return trace.BadParameter("missing parameter Token")
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.RequestTimeout
	}
	return nil
}

// HecClient submits events to the HTTP Event Collector. It is separate
// from Client: HEC speaks on its own port with its own token scheme and
// never goes through the session login flow.
type HecClient struct {
	cfg     HecConfig
	baseURL *url.URL
	http    *http.Client
	// channel identifies this sender for indexer acknowledgement.
	channel string
}

// NewHecClient builds a HecClient from cfg.
func NewHecClient(cfg HecConfig) (*HecClient, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, trace.BadParameter("invalid HEC URL %q: %v", cfg.BaseURL, err)
	}
	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.SkipVerify {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		transport = t
	}
	return &HecClient{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Transport: transport},
		channel: uuid.NewString(),
	}, nil
}

// SendEvent submits a single structured event.
func (h *HecClient) SendEvent(ctx context.Context, event HecEvent) (*HecResponse, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, trace.Wrap(err, "encoding event")
	}
	resp, err := h.post(ctx, "/services/collector/event", nil, payload, "application/json")
	return resp, trace.Wrap(err, "sending event")
}

// SendBatch submits multiple events in one request. HEC's batch format
// is concatenated JSON objects, not a JSON array.
func (h *HecClient) SendBatch(ctx context.Context, events []HecEvent) (*HecResponse, error) {
	if len(events) == 0 {
		return nil, trace.BadParameter("empty event batch")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return nil, trace.Wrap(err, "encoding event batch")
		}
	}
	resp, err := h.post(ctx, "/services/collector/event", nil, buf.Bytes(), "application/json")
	return resp, trace.Wrap(err, "sending batch of %d events", len(events))
}

// RawParams carries the metadata query parameters of a raw submission.
type RawParams struct {
	Source     string
	Sourcetype string
	Index      string
	Host       string
}

// SendRaw submits an unstructured payload to the raw endpoint, letting
// the server apply line breaking.
func (h *HecClient) SendRaw(ctx context.Context, data []byte, params RawParams) (*HecResponse, error) {
	query := url.Values{}
	if params.Source != "" {
		query.Set("source", params.Source)
	}
	if params.Sourcetype != "" {
		query.Set("sourcetype", params.Sourcetype)
	}
	if params.Index != "" {
		query.Set("index", params.Index)
	}
	if params.Host != "" {
		query.Set("host", params.Host)
	}
	resp, err := h.post(ctx, "/services/collector/raw", query, data, "text/plain")
	return resp, trace.Wrap(err, "sending raw payload")
}

// Health checks whether the collector can accept events.
func (h *HecClient) Health(ctx context.Context) error {
	_, err := h.roundTrip(ctx, http.MethodGet, "/services/collector/health", nil, nil, "")
	return trace.Wrap(err, "checking HEC health")
}

// CheckAcks queries indexer acknowledgement for previously returned ack
// IDs and reports which of them have been indexed.
func (h *HecClient) CheckAcks(ctx context.Context, ackIDs []int64) (map[int64]bool, error) {
	if len(ackIDs) == 0 {
		return nil, trace.BadParameter("no ack IDs to check")
	}
	payload, err := json.Marshal(map[string][]int64{"acks": ackIDs})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	body, err := h.roundTrip(ctx, http.MethodPost, "/services/collector/ack", nil, payload, "application/json")
	if err != nil {
		return nil, trace.Wrap(err, "checking acks")
	}
	var parsed struct {
		Acks map[string]bool `json:"acks"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, trace.Wrap(err, "parsing ack response")
	}
	acks := make(map[int64]bool, len(parsed.Acks))
	for id, done := range parsed.Acks {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		acks[n] = done
	}
	return acks, nil
}

func (h *HecClient) post(ctx context.Context, path string, query url.Values, payload []byte, contentType string) (*HecResponse, error) {
	body, err := h.roundTrip(ctx, http.MethodPost, path, query, payload, contentType)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	var resp HecResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, trace.Wrap(err, "parsing collector response")
	}
	return &resp, nil
}

func (h *HecClient) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	u := *h.baseURL
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	req.Header.Set("Authorization", "Splunk "+h.cfg.Token.Reveal())
	req.Header.Set("X-Splunk-Request-Channel", h.channel)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, trace.Wrap(ctx.Err())
		}
		return nil, trace.ConnectionProblem(err, "request to %s failed", redactURL(&u))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, trace.ConnectionProblem(err, "reading response from %s", redactURL(&u))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, trace.Wrap(&APIError{
			Status:  resp.StatusCode,
			URL:     redactURL(&u),
			Message: hecErrorText(body),
		})
	}
	return body, nil
}

// hecErrorText pulls the collector's text field out of an error body.
func hecErrorText(body []byte) string {
	var parsed HecResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Text
}
