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

// Package config resolves the layered runtime configuration and persists
// the profile catalog and user state. Precedence, lowest first: built-in
// defaults, persisted defaults, the selected profile, environment
// variables, CLI flags. Each layer replaces only the fields it actually
// provides; empty strings and zero numerics in the environment count as
// unset.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
)

// Environment variable names recognized by the resolver.
const (
	EnvBaseURL      = "SPLUNK_BASE_URL"
	EnvUsername     = "SPLUNK_USERNAME"
	EnvPassword     = "SPLUNK_PASSWORD"
	EnvAPIToken     = "SPLUNK_API_TOKEN"
	EnvSkipVerify   = "SPLUNK_SKIP_VERIFY"
	EnvProfile      = "SPLUNK_PROFILE"
	EnvConfigPath   = "SPLUNK_CONFIG_PATH"
	EnvConfigKey    = "SPLUNK_CONFIG_KEY"
	EnvEarliestTime = "SPLUNK_EARLIEST_TIME"
	EnvLatestTime   = "SPLUNK_LATEST_TIME"
	EnvMaxResults   = "SPLUNK_MAX_RESULTS"
	EnvDotenvOff    = "DOTENV_DISABLED"
)

// InvalidValueError reports an environment variable that was set but
// unparseable. Unset and empty values never produce it.
type InvalidValueError struct {
	Var    string
	Reason string
}

// Error implements error.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Var, e.Reason)
}

// Snapshot is the frozen configuration for one run. Immutable once
// resolved; every consumer reads the same values.
type Snapshot struct {
	// ProfileName is the selected profile, empty for ad hoc connections.
	ProfileName string
	BaseURL     string
	Username    string
	Password    secret.Secret
	APIToken    secret.Secret
	HECURL      string
	HECToken    secret.Secret
	SkipVerify  bool

	Timeout             time.Duration
	MaxRetries          int
	SessionTTL          time.Duration
	SessionExpiryBuffer time.Duration
	HealthCheckInterval time.Duration

	EarliestTime string
	LatestTime   string
	MaxResults   int

	InternalLogFilter string
	InternalLogCount  int
}

// Check validates that the snapshot can build a client.
func (s *Snapshot) Check() error {
	if s.BaseURL == "" {
		return trace.BadParameter("no base URL configured: set --base-url, %s or a profile", EnvBaseURL)
	}
	hasToken := !s.APIToken.IsZero()
	hasSession := s.Username != "" && !s.Password.IsZero()
	if !hasToken && !hasSession {
		return trace.BadParameter("no credentials configured: set an API token or a username and password")
	}
	return nil
}

// Overrides carries the CLI flag layer, applied last.
type Overrides struct {
	BaseURL      string
	Username     string
	Password     secret.Secret
	APIToken     secret.Secret
	SkipVerify   *bool
	Timeout      time.Duration
	MaxRetries   int
	EarliestTime string
	LatestTime   string
	MaxResults   int
}

// ResolveParams feeds Resolve.
type ResolveParams struct {
	// State is the persisted user state; nil acts as empty.
	State *State
	// ProfileName selects a profile explicitly; empty falls back to
	// SPLUNK_PROFILE, then the state's active profile.
	ProfileName string
	// Keyring resolves keyring-referenced profile secrets; nil uses the
	// OS keyring.
	Keyring secret.Store
	// Getenv overrides environment lookup in tests.
	Getenv func(string) string
	// Flags is the CLI override layer.
	Flags Overrides
}

// Resolve walks the override chain and freezes a Snapshot.
func Resolve(params ResolveParams) (*Snapshot, error) {
	getenv := params.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	store := params.Keyring
	if store == nil {
		store = secret.NewOSKeyring()
	}
	state := params.State
	if state == nil {
		state = NewState()
	}

	// Layer 1: built-in defaults.
	snap := &Snapshot{
		Timeout:             defaults.RequestTimeout,
		MaxRetries:          defaults.MaxRetries,
		SessionTTL:          defaults.SessionTTL,
		SessionExpiryBuffer: defaults.SessionExpiryBuffer,
		HealthCheckInterval: defaults.HealthCheckInterval,
		EarliestTime:        defaults.EarliestTime,
		LatestTime:          defaults.LatestTime,
		MaxResults:          defaults.MaxResults,
	}

	// Layer 2: persisted defaults.
	if v := state.SearchDefaults.EarliestTime; v != "" {
		snap.EarliestTime = v
	}
	if v := state.SearchDefaults.LatestTime; v != "" {
		snap.LatestTime = v
	}
	if v := state.SearchDefaults.MaxResults; v > 0 {
		snap.MaxResults = v
	}
	snap.InternalLogFilter = state.InternalLogDefaults.Filter
	snap.InternalLogCount = state.InternalLogDefaults.Count

	// Layer 3: the selected profile.
	profileName := params.ProfileName
	if profileName == "" {
		profileName = strings.TrimSpace(getenv(EnvProfile))
	}
	if profileName == "" {
		profileName = state.ActiveProfile
	}
	if profileName != "" {
		profile, ok := state.Profiles[profileName]
		if !ok {
			return nil, trace.NotFound("profile %q not found (have: %v)", profileName, state.ProfileNames())
		}
		if err := applyProfile(snap, &profile, store); err != nil {
			return nil, trace.Wrap(err)
		}
		snap.ProfileName = profileName
	}

	// Layer 4: environment variables.
	if err := applyEnv(snap, getenv); err != nil {
		return nil, trace.Wrap(err)
	}

	// Layer 5: CLI flags.
	applyFlags(snap, params.Flags)

	return snap, nil
}

func applyProfile(snap *Snapshot, p *Profile, store secret.Store) error {
	snap.BaseURL = p.BaseURL
	snap.SkipVerify = p.SkipVerify
	snap.Username = p.Username
	snap.HECURL = p.HECURL

	if !p.APIToken.IsZero() {
		token, err := p.APIToken.Resolve(store)
		if err != nil {
			return trace.Wrap(err, "resolving API token for profile %q", p.Name)
		}
		snap.APIToken = token
	}
	if !p.Password.IsZero() {
		password, err := p.Password.Resolve(store)
		if err != nil {
			return trace.Wrap(err, "resolving password for profile %q", p.Name)
		}
		snap.Password = password
	}
	if !p.HECToken.IsZero() {
		token, err := p.HECToken.Resolve(store)
		if err != nil {
			return trace.Wrap(err, "resolving HEC token for profile %q", p.Name)
		}
		snap.HECToken = token
	}

	if p.TimeoutSecs > 0 {
		snap.Timeout = time.Duration(p.TimeoutSecs) * time.Second
	}
	if p.MaxRetries > 0 {
		snap.MaxRetries = p.MaxRetries
	}
	if p.SessionTTLSecs > 0 {
		snap.SessionTTL = time.Duration(p.SessionTTLSecs) * time.Second
	}
	if p.ExpiryBufferSecs > 0 {
		snap.SessionExpiryBuffer = time.Duration(p.ExpiryBufferSecs) * time.Second
	}
	if p.HealthIntervalSecs > 0 {
		snap.HealthCheckInterval = time.Duration(p.HealthIntervalSecs) * time.Second
	}
	return nil
}

func applyEnv(snap *Snapshot, getenv func(string) string) error {
	lookup := func(name string) string {
		return strings.TrimSpace(getenv(name))
	}

	if v := lookup(EnvBaseURL); v != "" {
		snap.BaseURL = v
	}
	if v := lookup(EnvUsername); v != "" {
		snap.Username = v
	}
	if v := lookup(EnvPassword); v != "" {
		snap.Password = secret.New(v)
	}
	if v := lookup(EnvAPIToken); v != "" {
		snap.APIToken = secret.New(v)
	}
	if v := lookup(EnvSkipVerify); v != "" {
		enabled, err := parseBool(v)
		if err != nil {
			return trace.Wrap(&InvalidValueError{Var: EnvSkipVerify, Reason: "expected a boolean"})
		}
		snap.SkipVerify = enabled
	}
	if v := lookup(EnvEarliestTime); v != "" {
		snap.EarliestTime = v
	}
	if v := lookup(EnvLatestTime); v != "" {
		snap.LatestTime = v
	}
	if v := lookup(EnvMaxResults); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return trace.Wrap(&InvalidValueError{Var: EnvMaxResults, Reason: "expected a positive integer"})
		}
		snap.MaxResults = n
	}
	return nil
}

func applyFlags(snap *Snapshot, flags Overrides) {
	if flags.BaseURL != "" {
		snap.BaseURL = flags.BaseURL
	}
	if flags.Username != "" {
		snap.Username = flags.Username
	}
	if !flags.Password.IsZero() {
		snap.Password = flags.Password
	}
	if !flags.APIToken.IsZero() {
		snap.APIToken = flags.APIToken
	}
	if flags.SkipVerify != nil {
		snap.SkipVerify = *flags.SkipVerify
	}
	if flags.Timeout > 0 {
		snap.Timeout = flags.Timeout
	}
	if flags.MaxRetries > 0 {
		snap.MaxRetries = flags.MaxRetries
	}
	if flags.EarliestTime != "" {
		snap.EarliestTime = flags.EarliestTime
	}
	if flags.LatestTime != "" {
		snap.LatestTime = flags.LatestTime
	}
	if flags.MaxResults > 0 {
		snap.MaxResults = flags.MaxResults
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, trace.BadParameter("not a boolean: %q", v)
}

// ConfigPath returns the state file path honoring SPLUNK_CONFIG_PATH.
func ConfigPath(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(EnvConfigPath))
}
