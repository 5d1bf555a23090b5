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

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
)

// Exit codes form a stable contract for scripts wrapping splunkctl.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitAuth        = 2
	ExitConnection  = 3
	ExitNotFound    = 4
	ExitPermission  = 6
	ExitRateLimited = 7
	ExitUnavailable = 8
	ExitCancelled   = 130
)

// ExitCode maps an error to the exit-code taxonomy. Splunk API errors
// map by HTTP status; transport failures map to the connection code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	if apiErr, ok := client.AsAPIError(err); ok {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return ExitAuth
		case http.StatusForbidden:
			return ExitPermission
		case http.StatusNotFound:
			return ExitNotFound
		case http.StatusTooManyRequests:
			return ExitRateLimited
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ExitUnavailable
		}
		return ExitGeneral
	}
	switch {
	case trace.IsConnectionProblem(err):
		return ExitConnection
	case trace.IsAccessDenied(err):
		return ExitPermission
	case trace.IsNotFound(err):
		return ExitNotFound
	case trace.IsLimitExceeded(err):
		return ExitRateLimited
	}
	return ExitGeneral
}
