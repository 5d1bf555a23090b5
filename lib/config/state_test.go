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
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
)

func testProfile(name string) Profile {
	return Profile{
		Name:     name,
		BaseURL:  "https://splunk.example.com:8089",
		APIToken: PlainSecret(secret.New("token-" + name)),
	}
}

func TestManagerRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	m, err := NewManager(ManagerConfig{Path: path})
	require.NoError(t, err)
	require.Empty(t, m.State().Profiles)

	require.NoError(t, m.UpsertProfile(testProfile("dev")))
	require.NoError(t, m.UpsertProfile(testProfile("prod")))

	reloaded, err := NewManager(ManagerConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, []string{"dev", "prod"}, reloaded.State().ProfileNames())

	p, err := reloaded.GetProfile("dev")
	require.NoError(t, err)
	token, err := p.APIToken.Resolve(secret.NewMemStore())
	require.NoError(t, err)
	require.Equal(t, "token-dev", token.Reveal())
}

func TestCorruptConfigIsArchived(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{ invalid json }"), 0o600))

	m, err := NewManager(ManagerConfig{Path: path})
	require.NoError(t, err)

	// Defaults in memory, original archived, nothing silently deleted.
	require.Empty(t, m.State().Profiles)
	require.NoFileExists(t, path)
	backups, err := filepath.Glob(filepath.Join(dir, "config.corrupt.*"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	archived, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	require.Equal(t, "{ invalid json }", string(archived))

	// The manager is fully usable afterwards.
	require.NoError(t, m.UpsertProfile(testProfile("dev")))
	reloaded, err := NewManager(ManagerConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, []string{"dev"}, reloaded.State().ProfileNames())
}

func TestEncryptedStateRoundTrip(t *testing.T) {
	t.Parallel()

	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	cipher, err := NewCipher(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	m, err := NewManager(ManagerConfig{Path: path, Cipher: cipher})
	require.NoError(t, err)
	require.NoError(t, m.UpsertProfile(testProfile("dev")))

	// The on-disk form must not leak the credential.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "token-dev")

	reloaded, err := NewManager(ManagerConfig{Path: path, Cipher: cipher})
	require.NoError(t, err)
	require.Equal(t, []string{"dev"}, reloaded.State().ProfileNames())
}

func TestWrongKeyArchivesNotDeletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	keyA := make([]byte, 32)
	keyB := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, keyA)
	require.NoError(t, err)
	_, err = io.ReadFull(rand.Reader, keyB)
	require.NoError(t, err)
	keyB[0] ^= 0xff

	cipherA, err := NewCipher(keyA)
	require.NoError(t, err)
	cipherB, err := NewCipher(keyB)
	require.NoError(t, err)

	m, err := NewManager(ManagerConfig{Path: path, Cipher: cipherA})
	require.NoError(t, err)
	require.NoError(t, m.UpsertProfile(testProfile("dev")))

	// A wrong key reads as corruption: archive and fall back to defaults,
	// preserving the original bytes for recovery with the right key.
	reopened, err := NewManager(ManagerConfig{Path: path, Cipher: cipherB})
	require.NoError(t, err)
	require.Empty(t, reopened.State().Profiles)
	backups, err := filepath.Glob(filepath.Join(dir, "config.corrupt.*"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
}

func TestPasswordMasterKeyIsStable(t *testing.T) {
	t.Parallel()

	saltPath := filepath.Join(t.TempDir(), "config.json.salt")
	password := secret.New("correct horse battery staple")

	key1, err := PasswordMasterKey(password, saltPath)
	require.NoError(t, err)
	require.Len(t, key1, 32)
	require.FileExists(t, saltPath)

	// Same password and salt derive the same key; a different password
	// does not.
	key2, err := PasswordMasterKey(password, saltPath)
	require.NoError(t, err)
	require.Equal(t, key1, key2)

	key3, err := PasswordMasterKey(secret.New("other"), saltPath)
	require.NoError(t, err)
	require.NotEqual(t, key1, key3)
}

func TestKeyringMasterKeyGeneratedOnce(t *testing.T) {
	t.Parallel()

	store := secret.NewMemStore()
	key1, err := KeyringMasterKey(store)
	require.NoError(t, err)
	require.Len(t, key1, 32)

	key2, err := KeyringMasterKey(store)
	require.NoError(t, err)
	require.Equal(t, key1, key2)
}

func TestSearchHistoryRing(t *testing.T) {
	t.Parallel()

	state := NewState()
	for i := 0; i < defaults.SearchHistorySize+10; i++ {
		state.AddSearchHistory(fmt.Sprintf("search q%d", i))
	}
	require.Len(t, state.SearchHistory, defaults.SearchHistorySize)
	// Newest first, oldest dropped.
	require.Equal(t, fmt.Sprintf("search q%d", defaults.SearchHistorySize+9), state.SearchHistory[0])

	// Re-running a query moves it to the front without duplicating it.
	state.AddSearchHistory(state.SearchHistory[5])
	counts := map[string]int{}
	for _, q := range state.SearchHistory {
		counts[q]++
	}
	for q, n := range counts {
		require.Equal(t, 1, n, "query %q duplicated", q)
	}
}

func TestOnboardingVisibility(t *testing.T) {
	t.Parallel()

	var o Onboarding
	require.True(t, o.Visible())
	require.False(t, o.Done())

	o.Mark(MilestoneProfileReady)
	o.Mark(MilestoneProfileReady) // idempotent
	o.Mark(MilestoneConnectionVerified)
	o.Mark(MilestoneFirstSearchRun)
	o.Mark(MilestoneNavigationCycle)
	o.Mark(MilestoneHelpOpened)
	require.True(t, o.Done())
	require.True(t, o.Visible())

	o.SessionsSinceComplete = defaults.OnboardingAutoHideSessions
	require.False(t, o.Visible())

	o = Onboarding{DismissedAll: true}
	require.False(t, o.Visible())
}
