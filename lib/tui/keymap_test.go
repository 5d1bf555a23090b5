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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestGlobalKeysMatchFirst(t *testing.T) {
	t.Parallel()

	keys := newDefaultKeymap()
	app := NewApp(nil)

	require.Equal(t, Action(Quit{}), keys.route(keyPress("q"), app))
	require.Equal(t, Action(OpenHelp{}), keys.route(keyPress("?"), app))
	require.Equal(t, Action(CycleScreen{Forward: true}), keys.route(keyPress("tab"), app))
	require.Equal(t, Action(RequestRefresh{}), keys.route(keyPress("r"), app))

	// Quit stays global even with a popup open.
	app.OpenPopup(&Popup{Kind: PopupHelp})
	require.Equal(t, Action(Quit{}), keys.route(keyPress("q"), app))
}

func TestPopupConsumesUnmatchedKeys(t *testing.T) {
	t.Parallel()

	keys := newDefaultKeymap()
	app := NewApp(nil)
	app.OpenPopup(&Popup{Kind: PopupProfileSelector, Choices: []string{"dev", "prod"}})

	// Navigation moves the popup cursor instead of the screen list.
	require.Nil(t, keys.route(keyPress("down"), app))
	require.Equal(t, 1, app.Popup.Cursor)
	require.Nil(t, keys.route(keyPress("down"), app))
	require.Equal(t, 1, app.Popup.Cursor, "cursor clamps at the last choice")

	require.Equal(t, Action(ConfirmPopup{}), keys.route(keyPress("enter"), app))
	require.Equal(t, Action(DismissPopup{}), keys.route(keyPress("esc"), app))
}

func TestExportPopupTabTogglesFormat(t *testing.T) {
	t.Parallel()

	keys := newDefaultKeymap()
	app := NewApp(nil)
	app.OpenPopup(&Popup{Kind: PopupExport, Export: NewExportForm(ExportJobs)})

	require.Equal(t, Action(ToggleExportFormat{}), keys.route(keyPress("tab"), app))
}

func TestKeybindingOverrides(t *testing.T) {
	t.Parallel()

	keys := newDefaultKeymap()
	keys.applyOverrides(map[string]string{
		"quit":    "x",
		"refresh": "f5",
		"bogus":   "z",
		"help":    "",
	})

	app := NewApp(nil)
	require.Equal(t, Action(Quit{}), keys.route(keyPress("x"), app))
	require.Nil(t, keys.route(keyPress("q"), app), "default quit binding was replaced")
	require.Equal(t, Action(OpenHelp{}), keys.route(keyPress("?"), app), "empty override is ignored")
}
