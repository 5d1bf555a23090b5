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

package config

import (
	"encoding/json"
	"fmt"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/secret"
)

// SecretValue is credential material as stored in a profile: either an
// inline value (protected by file-level encryption when enabled) or a
// reference into the OS keyring, resolved at use time.
type SecretValue struct {
	plain   secret.Secret
	keyring *secret.KeyringRef
}

// PlainSecret wraps an inline credential.
func PlainSecret(s secret.Secret) SecretValue {
	return SecretValue{plain: s}
}

// KeyringSecret references a keyring-stored credential.
func KeyringSecret(ref secret.KeyringRef) SecretValue {
	return SecretValue{keyring: &ref}
}

// IsZero reports whether no credential is configured.
func (v SecretValue) IsZero() bool {
	return v.plain.IsZero() && v.keyring == nil
}

// Resolve returns the credential, hitting the keyring for references.
func (v SecretValue) Resolve(store secret.Store) (secret.Secret, error) {
	if v.keyring != nil {
		s, err := store.Get(v.keyring.Service, v.keyring.Account)
		if err != nil {
			return secret.Secret{}, trace.Wrap(err, "resolving keyring secret")
		}
		return s, nil
	}
	return v.plain, nil
}

// secretValueJSON is the persisted form. The inline variant stores the
// raw value deliberately: the catalog file as a whole is what gets
// encrypted, and redacting here would destroy the credential on save.
type secretValueJSON struct {
	Plain   string             `json:"plain,omitempty"`
	Keyring *secret.KeyringRef `json:"keyring,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v SecretValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(secretValueJSON{
		Plain:   v.plain.Reveal(),
		Keyring: v.keyring,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *SecretValue) UnmarshalJSON(data []byte) error {
	var parsed secretValueJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		return trace.Wrap(err)
	}
	v.plain = secret.New(parsed.Plain)
	v.keyring = parsed.Keyring
	return nil
}

// String redacts; profiles render through here.
func (v SecretValue) String() string {
	if v.keyring != nil {
		return "keyring:" + v.keyring.Service + "/" + v.keyring.Account
	}
	return v.plain.String()
}

// GoString redacts %#v output as well.
func (v SecretValue) GoString() string {
	return v.String()
}

// Format redacts every fmt verb.
func (v SecretValue) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, v.String())
}

// Profile is a named connection record for one Splunk instance.
type Profile struct {
	// Name is the catalog key.
	Name string `json:"name"`
	// BaseURL is the management URL, e.g. https://splunk.example.com:8089.
	BaseURL string `json:"base_url"`
	// APIToken authenticates with a static token when set.
	APIToken SecretValue `json:"api_token,omitempty"`
	// Username and Password authenticate via session login when the
	// token is absent.
	Username string      `json:"username,omitempty"`
	Password SecretValue `json:"password,omitempty"`
	// HECURL and HECToken configure the event collector, optional.
	HECURL   string      `json:"hec_url,omitempty"`
	HECToken SecretValue `json:"hec_token,omitempty"`
	// SkipVerify disables TLS certificate verification.
	SkipVerify bool `json:"skip_verify,omitempty"`
	// TimeoutSecs overrides the request timeout, seconds.
	TimeoutSecs int `json:"timeout_secs,omitempty"`
	// MaxRetries overrides the retry budget.
	MaxRetries int `json:"max_retries,omitempty"`
	// SessionTTLSecs overrides the assumed session token lifetime.
	SessionTTLSecs int `json:"session_ttl_secs,omitempty"`
	// ExpiryBufferSecs overrides the proactive re-login buffer.
	ExpiryBufferSecs int `json:"expiry_buffer_secs,omitempty"`
	// HealthIntervalSecs overrides the background health probe period.
	HealthIntervalSecs int `json:"health_interval_secs,omitempty"`
}

// Check validates the profile. A buildable profile carries exactly one
// of an API token or a username/password pair.
func (p *Profile) Check() error {
	if p.Name == "" {
		return trace.BadParameter("profile is missing a name")
	}
	if p.BaseURL == "" {
		return trace.BadParameter("profile %q is missing a base URL", p.Name)
	}
	hasToken := !p.APIToken.IsZero()
	hasSession := p.Username != "" && !p.Password.IsZero()
	if hasToken && hasSession {
		return trace.BadParameter("profile %q sets both an API token and a username/password pair", p.Name)
	}
	if !hasToken && !hasSession {
		return trace.BadParameter("profile %q needs either an API token or a username and password", p.Name)
	}
	return nil
}
