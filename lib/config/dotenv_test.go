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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDotenvMissingFileIsFine(t *testing.T) {
	require.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotenvSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPLUNKCTL_TEST_DOTENV=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SPLUNKCTL_TEST_DOTENV") })

	require.NoError(t, LoadDotenv(path))
	require.Equal(t, "from-dotenv", os.Getenv("SPLUNKCTL_TEST_DOTENV"))
}

func TestLoadDotenvParseErrorNeverEchoesValues(t *testing.T) {
	const leaked = "super-secret-token-value"
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPLUNK_API_TOKEN="+leaked+"\nINVALID\n"), 0o600))

	err := LoadDotenv(path)
	require.Error(t, err)
	// The message points at the file and the escape hatch, but must not
	// echo any line from it.
	require.NotContains(t, err.Error(), leaked)
	require.Contains(t, err.Error(), ".env")
	require.Contains(t, err.Error(), EnvDotenvOff)
}

func TestLoadDotenvDisabled(t *testing.T) {
	t.Setenv(EnvDotenvOff, "1")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVALID LINE\n"), 0o600))
	require.NoError(t, LoadDotenv(path))
}
