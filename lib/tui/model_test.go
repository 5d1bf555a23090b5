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

package tui

import (
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestBackspaceTrimsWholeRune(t *testing.T) {
	t.Parallel()

	m := &Model{app: NewApp(nil), keys: newDefaultKeymap()}
	m.app.Screen = ScreenSearch
	m.app.Search.Query = "index=日本"

	action := m.routeKey(tea.KeyMsg{Type: tea.KeyBackspace})
	require.Equal(t, SetQuery{Text: "index=日"}, action)
	require.True(t, utf8.ValidString(action.(SetQuery).Text))

	m.app.Search.Query = "a"
	require.Equal(t, SetQuery{Text: ""}, m.routeKey(tea.KeyMsg{Type: tea.KeyBackspace}))

	m.app.Search.Query = ""
	require.Nil(t, m.routeKey(tea.KeyMsg{Type: tea.KeyBackspace}))
}
