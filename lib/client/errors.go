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
	"errors"
	"fmt"
	"net/http"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client/breaker"
)

// APIError is a non-2xx response from splunkd. Status drives retry and
// exit-code classification; Message carries the first Splunk-reported
// message text, if any.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// URL is the request URL with credentials stripped.
	URL string
	// Message is the first message returned by Splunk, if present.
	Message string
	// RequestID is the X-Splunk-Request-Id header when the server sent one.
	RequestID string
}

// Error implements error.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("splunkd returned %d for %s: %s", e.Status, e.URL, msg)
}

// AsAPIError extracts an APIError from anywhere in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(trace.Unwrap(err), &apiErr) || errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func statusIs(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// IsAuthFailed reports a 401 that survived the single re-login attempt.
func IsAuthFailed(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsNotFound reports a missing resource (404, or an empty entry envelope
// on a single-resource GET).
func IsNotFound(err error) bool {
	return trace.IsNotFound(err) || statusIs(err, http.StatusNotFound)
}

// IsForbidden reports a 403.
func IsForbidden(err error) bool {
	return trace.IsAccessDenied(err) || statusIs(err, http.StatusForbidden)
}

// IsRateLimited reports a 429.
func IsRateLimited(err error) bool {
	return statusIs(err, http.StatusTooManyRequests)
}

// IsServiceUnavailable reports a 502, 503 or 504.
func IsServiceUnavailable(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsCircuitOpen reports a call rejected by the circuit breaker without
// any HTTP being issued.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, breaker.ErrStateOpen)
}

// IsCancelled reports that the caller's context was cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeout reports that the call exceeded its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || trace.IsLimitExceeded(err)
}

// IsTransport reports a socket, DNS or TLS-handshake level failure, the
// retryable kind that never produced an HTTP status.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsAPIError(err); ok {
		return false
	}
	return trace.IsConnectionProblem(err) && !IsCircuitOpen(err)
}

// retryableStatus reports whether an HTTP status is worth retrying.
// 408, 429 and the 502/503/504 family are transient; all other 4xx are
// terminal, including 401 after the one re-login attempt.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ErrorCategory buckets an error for metrics.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case IsCancelled(err):
		return "cancelled"
	case IsTimeout(err):
		return "timeout"
	case IsCircuitOpen(err):
		return "circuit_open"
	case IsTransport(err):
		return "transport"
	}
	if apiErr, ok := AsAPIError(err); ok {
		switch {
		case apiErr.Status >= 500:
			return "5xx"
		case apiErr.Status >= 400:
			return "4xx"
		default:
			return "api"
		}
	}
	return "unknown"
}
