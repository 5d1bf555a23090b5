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

package common

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	apiErr := func(status int) error {
		return trace.Wrap(&client.APIError{Status: status, URL: "https://splunk:8089/services/server/info"})
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "cancelled", err: context.Canceled, want: ExitCancelled},
		{name: "wrapped cancelled", err: trace.Wrap(context.Canceled), want: ExitCancelled},
		{name: "unauthorized", err: apiErr(http.StatusUnauthorized), want: ExitAuth},
		{name: "forbidden", err: apiErr(http.StatusForbidden), want: ExitPermission},
		{name: "not found", err: apiErr(http.StatusNotFound), want: ExitNotFound},
		{name: "rate limited", err: apiErr(http.StatusTooManyRequests), want: ExitRateLimited},
		{name: "bad gateway", err: apiErr(http.StatusBadGateway), want: ExitUnavailable},
		{name: "service unavailable", err: apiErr(http.StatusServiceUnavailable), want: ExitUnavailable},
		{name: "gateway timeout", err: apiErr(http.StatusGatewayTimeout), want: ExitUnavailable},
		{name: "other api status", err: apiErr(http.StatusConflict), want: ExitGeneral},
		{name: "connection problem", err: trace.ConnectionProblem(errors.New("refused"), "dial"), want: ExitConnection},
		{name: "access denied", err: trace.AccessDenied("no"), want: ExitPermission},
		{name: "trace not found", err: trace.NotFound("gone"), want: ExitNotFound},
		{name: "limit exceeded", err: trace.LimitExceeded("slow down"), want: ExitRateLimited},
		{name: "bad parameter", err: trace.BadParameter("nope"), want: ExitGeneral},
		{name: "plain error", err: errors.New("boom"), want: ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
