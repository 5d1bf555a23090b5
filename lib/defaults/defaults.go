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

// Package defaults holds the built-in defaults for every tunable the
// toolkit exposes. Values here sit at the bottom of the override chain:
// persisted defaults, profile fields, environment variables and CLI flags
// all take precedence.
package defaults

import "time"

const (
	// ManagementPort is the Splunk management (splunkd) port.
	ManagementPort = 8089
	// HECPort is the HTTP Event Collector port.
	HECPort = 8088

	// RequestTimeout bounds a single client call, retries included.
	RequestTimeout = 30 * time.Second
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries = 3
	// RetryBase is the base delay for exponential backoff.
	RetryBase = 250 * time.Millisecond
	// RetryCap is the ceiling for a single backoff delay.
	RetryCap = 10 * time.Second
	// RetryAfterCap clamps server-provided Retry-After values.
	RetryAfterCap = 60 * time.Second

	// SessionTTL is the assumed lifetime of a splunkd session token.
	SessionTTL = 3600 * time.Second
	// SessionExpiryBuffer triggers proactive re-login this long before
	// the cached token expires.
	SessionExpiryBuffer = 60 * time.Second
	// HealthCheckInterval is the period between background health probes.
	HealthCheckInterval = 60 * time.Second

	// EarliestTime is the default search window start.
	EarliestTime = "-24h"
	// LatestTime is the default search window end.
	LatestTime = "now"
	// MaxResults caps search result pages.
	MaxResults = 1000

	// SearchPollInitial is the first interval when polling a search job.
	SearchPollInitial = 250 * time.Millisecond
	// SearchPollMax is the ceiling the poll interval doubles up to while
	// job progress is unchanged.
	SearchPollMax = 2 * time.Second

	// BreakerFailureThreshold trips the circuit after this many
	// consecutive retryable failures.
	BreakerFailureThreshold = 5
	// BreakerOpenWindow is the initial fail-fast window.
	BreakerOpenWindow = 30 * time.Second
	// BreakerOpenWindowCap bounds the doubled re-open window.
	BreakerOpenWindowCap = 5 * time.Minute
	// BreakerRecoverySuccesses is the number of successes, beyond the
	// half-open probe, required to close the circuit again.
	BreakerRecoverySuccesses = 2

	// AggregateFetchTimeout caps each (profile, resource) fetch during
	// multi-profile aggregation, on top of the client timeout.
	AggregateFetchTimeout = 30 * time.Second

	// ActionQueueCapacity is the size of the TUI action channel.
	ActionQueueCapacity = 256
	// ToastTTL is how long a notification toast stays visible.
	ToastTTL = 4 * time.Second
	// TickInterval drives TUI redraw and auto-refresh bookkeeping.
	TickInterval = 250 * time.Millisecond
	// SearchHistorySize bounds the persisted search history ring.
	SearchHistorySize = 50
	// MaxHintsPerSession rate-limits onboarding hints.
	MaxHintsPerSession = 3
	// OnboardingAutoHideSessions hides the completed checklist after
	// this many further sessions.
	OnboardingAutoHideSessions = 3

	// InternalLogPollInterval paces follow-mode fetches of _internal
	// events.
	InternalLogPollInterval = 2 * time.Second

	// ValidateMinQueryLength skips SPL validation for shorter input.
	ValidateMinQueryLength = 3
	// ValidateDebounce delays SPL validation while the user types.
	ValidateDebounce = 300 * time.Millisecond

	// CompletionCacheTTL is the default freshness window for cached
	// dynamic shell completion values.
	CompletionCacheTTL = 5 * time.Minute

	// ConfigFileName is the user state file, relative to the config dir.
	ConfigFileName = "config.json"
	// KeyringService is the fixed OS keyring service name for both the
	// master key and keyring-stored profile secrets.
	KeyringService = "splunkctl"
	// KeyringMasterKeyAccount stores the random AES master key.
	KeyringMasterKeyAccount = "master-key"
)

// ConfigFileWhitelist is the curated set of .conf files that
// list-all-config aggregation walks. Partial failure of one file never
// aborts the aggregate.
var ConfigFileWhitelist = []string{
	"props",
	"transforms",
	"inputs",
	"outputs",
	"server",
	"indexes",
	"savedsearches",
	"authentication",
	"authorize",
	"distsearch",
	"limits",
	"web",
}

// HumanDateFormat is used wherever a timestamp is rendered for humans.
const HumanDateFormat = "Jan _2 15:04:05 UTC"
