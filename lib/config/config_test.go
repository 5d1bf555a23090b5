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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func envMap(m map[string]string) func(string) string {
	return func(name string) string { return m[name] }
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	snap, err := Resolve(ResolveParams{
		Keyring: secret.NewMemStore(),
		Getenv:  envMap(nil),
	})
	require.NoError(t, err)
	require.Equal(t, defaults.RequestTimeout, snap.Timeout)
	require.Equal(t, defaults.MaxRetries, snap.MaxRetries)
	require.Equal(t, defaults.EarliestTime, snap.EarliestTime)
	require.Equal(t, defaults.LatestTime, snap.LatestTime)
	require.Equal(t, defaults.MaxResults, snap.MaxResults)
	require.Error(t, snap.Check())
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.SearchDefaults.EarliestTime = "-7d"
	state.Profiles["dev"] = Profile{
		Name:        "dev",
		BaseURL:     "https://profile:8089",
		APIToken:    PlainSecret(secret.New("profile-token")),
		TimeoutSecs: 45,
	}
	state.ActiveProfile = "dev"

	env := map[string]string{
		EnvBaseURL:      "https://env:8089",
		EnvEarliestTime: "-1h",
	}

	snap, err := Resolve(ResolveParams{
		State:   state,
		Keyring: secret.NewMemStore(),
		Getenv:  envMap(env),
		Flags:   Overrides{EarliestTime: "-5m"},
	})
	require.NoError(t, err)

	// Environment beats profile, flags beat environment, untouched
	// fields keep the lower layers' values.
	require.Equal(t, "https://env:8089", snap.BaseURL)
	require.Equal(t, "-5m", snap.EarliestTime)
	require.Equal(t, 45*time.Second, snap.Timeout)
	require.Equal(t, "profile-token", snap.APIToken.Reveal())
	require.Equal(t, "dev", snap.ProfileName)
	require.NoError(t, snap.Check())
}

func TestResolveIgnoresEmptyEnv(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Profiles["dev"] = testProfile("dev")

	snap, err := Resolve(ResolveParams{
		State:       state,
		ProfileName: "dev",
		Keyring:     secret.NewMemStore(),
		Getenv: envMap(map[string]string{
			EnvBaseURL:    "   ",
			EnvMaxResults: "",
		}),
	})
	require.NoError(t, err)
	require.Equal(t, "https://splunk.example.com:8089", snap.BaseURL)
	require.Equal(t, defaults.MaxResults, snap.MaxResults)
}

func TestResolveInvalidNumericEnv(t *testing.T) {
	t.Parallel()

	_, err := Resolve(ResolveParams{
		Keyring: secret.NewMemStore(),
		Getenv:  envMap(map[string]string{EnvMaxResults: "lots"}),
	})
	require.Error(t, err)
	var invalid *InvalidValueError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, EnvMaxResults, invalid.Var)
}

func TestResolveUnknownProfile(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Profiles["dev"] = testProfile("dev")

	_, err := Resolve(ResolveParams{
		State:       state,
		ProfileName: "staging",
		Keyring:     secret.NewMemStore(),
		Getenv:      envMap(nil),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "dev")
}

func TestResolveKeyringSecret(t *testing.T) {
	t.Parallel()

	store := secret.NewMemStore()
	require.NoError(t, store.Set("splunkctl", "dev-token", secret.New("from-keyring")))

	state := NewState()
	state.Profiles["dev"] = Profile{
		Name:     "dev",
		BaseURL:  "https://splunk.example.com:8089",
		APIToken: KeyringSecret(secret.KeyringRef{Service: "splunkctl", Account: "dev-token"}),
	}

	snap, err := Resolve(ResolveParams{
		State:       state,
		ProfileName: "dev",
		Keyring:     store,
		Getenv:      envMap(nil),
	})
	require.NoError(t, err)
	require.Equal(t, "from-keyring", snap.APIToken.Reveal())
}

func TestProfileNeverRendersSecrets(t *testing.T) {
	t.Parallel()

	p := Profile{
		Name:     "dev",
		BaseURL:  "https://splunk.example.com:8089",
		Username: "admin",
		Password: PlainSecret(secret.New("hunter22")),
		APIToken: PlainSecret(secret.New("raw-token-value")),
	}

	for _, rendered := range []string{
		fmt.Sprintf("%v", p),
		fmt.Sprintf("%+v", p),
		fmt.Sprintf("%#v", p),
		fmt.Sprint(p.Password),
		fmt.Sprint(p.APIToken),
	} {
		require.NotContains(t, rendered, "hunter22")
		require.NotContains(t, rendered, "raw-token-value")
	}
}

func TestProfileCheck(t *testing.T) {
	t.Parallel()

	p := testProfile("dev")
	require.NoError(t, p.Check())

	both := p
	both.Username = "admin"
	both.Password = PlainSecret(secret.New("pw"))
	require.Error(t, both.Check())

	neither := Profile{Name: "x", BaseURL: "https://h:8089"}
	require.Error(t, neither.Check())

	missing := Profile{Name: "x", APIToken: PlainSecret(secret.New("t"))}
	require.Error(t, missing.Check())
}
