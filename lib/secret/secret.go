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

// Package secret wraps credential material so that it cannot leak through
// logs, debug output or error messages. Redaction is enforced by the type,
// not by caller discipline: every textual rendering of a Secret yields
// the redaction placeholder, and only Reveal returns the raw value.
package secret

import (
	"encoding/json"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/gravitational/trace"
)

// Redacted is the placeholder every display form of a Secret emits.
const Redacted = "***REDACTED***"

// Secret holds a sensitive string. The zero value is an empty secret.
type Secret struct {
	value string
}

// New wraps a raw credential value.
func New(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the raw value. This is the only accessor that does.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// String implements fmt.Stringer and always redacts.
func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return Redacted
}

// GoString redacts %#v output as well.
func (s Secret) GoString() string {
	return s.String()
}

// Format redacts every fmt verb, including %v, %s, %q and %#v.
func (s Secret) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, s.String())
}

// MarshalJSON emits the redaction placeholder. Persisting the raw value is
// done explicitly through Reveal by the config encryption layer, never by
// generic serialization.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a plain string. Values equal to the redaction
// placeholder are rejected so a round-tripped redacted document cannot
// silently replace a credential.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return trace.Wrap(err)
	}
	if value == Redacted {
		return trace.BadParameter("refusing to unmarshal a redacted secret placeholder")
	}
	s.value = value
	return nil
}

// KeyringRef points at a credential stored in the OS keyring rather than
// in the config file.
type KeyringRef struct {
	// Service is the keyring service name.
	Service string `json:"service"`
	// Account is the keyring account (key) name.
	Account string `json:"account"`
}

// Store is the minimal keyring surface the toolkit needs. The real
// implementation is the OS keyring; tests substitute an in-memory one.
type Store interface {
	Get(service, account string) (Secret, error)
	Set(service, account string, value Secret) error
	Delete(service, account string) error
}

// osKeyring adapts github.com/99designs/keyring to Store.
type osKeyring struct{}

// NewOSKeyring returns a Store backed by the platform keyring
// (Keychain, Secret Service, wincred, ...).
func NewOSKeyring() Store {
	return osKeyring{}
}

func (osKeyring) open(service string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
	})
	if err != nil {
		return nil, trace.Wrap(err, "opening OS keyring for service %q", service)
	}
	return ring, nil
}

func (k osKeyring) Get(service, account string) (Secret, error) {
	ring, err := k.open(service)
	if err != nil {
		return Secret{}, trace.Wrap(err)
	}
	item, err := ring.Get(account)
	if err != nil {
		if err == keyring.ErrKeyNotFound {
			return Secret{}, trace.NotFound("keyring entry %q/%q not found", service, account)
		}
		return Secret{}, trace.Wrap(err, "reading keyring entry %q/%q", service, account)
	}
	return New(string(item.Data)), nil
}

func (k osKeyring) Set(service, account string, value Secret) error {
	ring, err := k.open(service)
	if err != nil {
		return trace.Wrap(err)
	}
	err = ring.Set(keyring.Item{
		Key:  account,
		Data: []byte(value.Reveal()),
	})
	return trace.Wrap(err)
}

func (k osKeyring) Delete(service, account string) error {
	ring, err := k.open(service)
	if err != nil {
		return trace.Wrap(err)
	}
	if err := ring.Remove(account); err != nil && err != keyring.ErrKeyNotFound {
		return trace.Wrap(err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and platforms without a
// usable OS keyring.
type MemStore struct {
	entries map[string]Secret
}

// NewMemStore returns an empty in-memory keyring.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Secret)}
}

func (m *MemStore) key(service, account string) string {
	return service + "\x00" + account
}

// Get implements Store.
func (m *MemStore) Get(service, account string) (Secret, error) {
	s, ok := m.entries[m.key(service, account)]
	if !ok {
		return Secret{}, trace.NotFound("keyring entry %q/%q not found", service, account)
	}
	return s, nil
}

// Set implements Store.
func (m *MemStore) Set(service, account string, value Secret) error {
	m.entries[m.key(service, account)] = value
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(service, account string) error {
	delete(m.entries, m.key(service, account))
	return nil
}
