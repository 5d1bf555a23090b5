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

package secret

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretNeverLeaks(t *testing.T) {
	t.Parallel()

	const raw = "super-sensitive-token-1234"
	s := New(raw)

	renderings := []string{
		s.String(),
		fmt.Sprint(s),
		fmt.Sprintf("%v", s),
		fmt.Sprintf("%+v", s),
		fmt.Sprintf("%#v", s),
		fmt.Sprintf("%s", s),
		fmt.Sprintf("%q", s),
	}
	for _, r := range renderings {
		require.NotContains(t, r, raw)
		require.Contains(t, r, Redacted)
	}

	require.Equal(t, raw, s.Reveal())
}

func TestSecretInsideStruct(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Name  string
		Token Secret
	}
	const raw = "embedded-secret-value"
	w := wrapper{Name: "prod", Token: New(raw)}

	require.NotContains(t, fmt.Sprintf("%+v", w), raw)
	require.NotContains(t, fmt.Sprintf("%#v", w), raw)
}

func TestSecretJSON(t *testing.T) {
	t.Parallel()

	const raw = "json-secret"
	data, err := json.Marshal(New(raw))
	require.NoError(t, err)
	require.NotContains(t, string(data), raw)

	var s Secret
	require.NoError(t, json.Unmarshal([]byte(`"plain-value"`), &s))
	require.Equal(t, "plain-value", s.Reveal())

	// A redacted placeholder must not round-trip into a credential.
	err = json.Unmarshal([]byte(`"`+Redacted+`"`), &s)
	require.Error(t, err)
}

func TestMemStore(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	_, err := store.Get("svc", "acct")
	require.Error(t, err)

	require.NoError(t, store.Set("svc", "acct", New("v1")))
	got, err := store.Get("svc", "acct")
	require.NoError(t, err)
	require.Equal(t, "v1", got.Reveal())

	require.NoError(t, store.Delete("svc", "acct"))
	_, err = store.Get("svc", "acct")
	require.Error(t, err)
}
