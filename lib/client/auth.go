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
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
)

// AuthStrategy decides how a request gets its Authorization header.
type AuthStrategy interface {
	// Authorize sets auth headers on req, acquiring or refreshing
	// tokens as needed.
	Authorize(ctx context.Context, c *Client, req *http.Request) error
	// Invalidate drops any cached token so the next Authorize
	// re-acquires it. Called once after a 401.
	Invalidate()
	// Name identifies the strategy for diagnostics ("api_token" or
	// "session_token"); never credential material.
	Name() string
}

// APITokenAuth sends a static Splunk API token as a Bearer header.
type APITokenAuth struct {
	Token secret.Secret
}

// NewAPITokenAuth wraps an API token.
func NewAPITokenAuth(token secret.Secret) *APITokenAuth {
	return &APITokenAuth{Token: token}
}

// Authorize implements AuthStrategy.
func (a *APITokenAuth) Authorize(ctx context.Context, c *Client, req *http.Request) error {
	if a.Token.IsZero() {
		return trace.BadParameter("API token auth configured with an empty token")
	}
	req.Header.Set("Authorization", "Bearer "+a.Token.Reveal())
	return nil
}

// Invalidate implements AuthStrategy. Static tokens cannot refresh.
func (a *APITokenAuth) Invalidate() {}

// Name implements AuthStrategy.
func (a *APITokenAuth) Name() string { return "api_token" }

// SessionAuth exchanges username/password for a short-lived session
// token via /services/auth/login, caches it and refreshes it before it
// expires. The cache is guarded by an exclusive section held only for
// the refresh decision and the login round trip.
type SessionAuth struct {
	Username string
	Password secret.Secret
	// TTL is the assumed server-side token lifetime.
	TTL time.Duration
	// ExpiryBuffer refreshes the token this long before expiry.
	ExpiryBuffer time.Duration

	mu     sync.Mutex
	token  secret.Secret
	expiry time.Time
}

// NewSessionAuth builds session auth with default TTL and buffer.
func NewSessionAuth(username string, password secret.Secret) *SessionAuth {
	return &SessionAuth{
		Username:     username,
		Password:     password,
		TTL:          defaults.SessionTTL,
		ExpiryBuffer: defaults.SessionExpiryBuffer,
	}
}

// Authorize implements AuthStrategy.
func (a *SessionAuth) Authorize(ctx context.Context, c *Client, req *http.Request) error {
	token, err := a.currentToken(ctx, c)
	if err != nil {
		return trace.Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Reveal())
	return nil
}

// Invalidate implements AuthStrategy.
func (a *SessionAuth) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = secret.Secret{}
	a.expiry = time.Time{}
}

// Name implements AuthStrategy.
func (a *SessionAuth) Name() string { return "session_token" }

// currentToken returns the cached token, logging in when there is none
// or when now >= expiry - buffer.
func (a *SessionAuth) currentToken(ctx context.Context, c *Client) (secret.Secret, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := c.cfg.Clock.Now()
	if !a.token.IsZero() && now.Before(a.expiry.Add(-a.ExpiryBuffer)) {
		return a.token, nil
	}

	token, err := a.login(ctx, c)
	if err != nil {
		return secret.Secret{}, trace.Wrap(err)
	}
	a.token = token
	a.expiry = now.Add(a.TTL)
	return a.token, nil
}

// login performs the /services/auth/login exchange. It bypasses
// Client.do on purpose: the login call must not recurse into auth, and
// its failure modes are terminal rather than retryable.
func (a *SessionAuth) login(ctx context.Context, c *Client) (secret.Secret, error) {
	if a.Username == "" || a.Password.IsZero() {
		return secret.Secret{}, trace.BadParameter("session auth requires both username and password")
	}

	u := *c.baseURL
	u.Path = "/services/auth/login"
	u.RawQuery = url.Values{"output_mode": []string{"json"}}.Encode()

	form := url.Values{
		"username": []string{a.Username},
		"password": []string{a.Password.Reveal()},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return secret.Secret{}, trace.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return secret.Secret{}, trace.Wrap(ctx.Err())
		}
		return secret.Secret{}, trace.ConnectionProblem(err, "login request to %s failed", redactURL(&u))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return secret.Secret{}, trace.ConnectionProblem(err, "reading login response")
	}
	if resp.StatusCode != http.StatusOK {
		return secret.Secret{}, trace.Wrap(&APIError{
			Status:    resp.StatusCode,
			URL:       redactURL(&u),
			Message:   firstSplunkMessage(body),
			RequestID: resp.Header.Get("X-Splunk-Request-Id"),
		})
	}

	var parsed struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return secret.Secret{}, trace.Wrap(err, "parsing login response")
	}
	if parsed.SessionKey == "" {
		return secret.Secret{}, trace.BadParameter("login response carried no session key")
	}
	return secret.New(parsed.SessionKey), nil
}
