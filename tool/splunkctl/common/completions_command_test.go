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
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"
)

func TestCompletionScriptsCoverAllShells(t *testing.T) {
	t.Parallel()

	markers := map[string]string{
		"bash":       "compgen",
		"zsh":        "_describe",
		"fish":       "__fish_use_subcommand",
		"powershell": "Register-ArgumentCompleter",
		"elvish":     "edit:completion:arg-completer",
	}
	for shell, marker := range markers {
		cfg, out := testCLIConfig("table")
		app := kingpin.New("splunkctl", "")
		c := &CompletionsCommand{}
		c.Initialize(app, cfg)
		c.shell = shell
		c.dynamic = true
		c.cacheTTL = time.Minute

		require.NoError(t, c.runScript(cfg))
		text := out.String()
		require.Contains(t, text, marker, "shell %s", shell)
		// Dynamic helpers shell out to the hidden complete subcommand
		// with the TTL baked in.
		require.Contains(t, text, "splunkctl complete indexes --completion-cache-ttl=1m0s", "shell %s", shell)
	}
}
