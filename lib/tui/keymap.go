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
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds the global bindings. Names in the persisted keybinding
// override map correspond to the struct fields in lower case.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	NextScreen key.Binding
	PrevScreen key.Binding
	Up         key.Binding
	Down       key.Binding
	Refresh    key.Binding
	Export     key.Binding
	Profiles   key.Binding
	More       key.Binding
	Confirm    key.Binding
	Dismiss    key.Binding
}

func newDefaultKeymap() *keyMap {
	return &keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		NextScreen: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next")),
		PrevScreen: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Profiles:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profiles")),
		More:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "more")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}

// applyOverrides replaces binding keys from the persisted config. An
// unknown action name is ignored rather than rejected so older configs
// keep working.
func (k *keyMap) applyOverrides(overrides map[string]string) {
	for name, combo := range overrides {
		if combo == "" {
			continue
		}
		switch name {
		case "quit":
			k.Quit = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "quit"))
		case "help":
			k.Help = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "help"))
		case "next_screen":
			k.NextScreen = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "next"))
		case "prev_screen":
			k.PrevScreen = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "prev"))
		case "refresh":
			k.Refresh = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "refresh"))
		case "export":
			k.Export = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "export"))
		case "profiles":
			k.Profiles = key.NewBinding(key.WithKeys(combo), key.WithHelp(combo, "profiles"))
		}
	}
}

// ShortHelp implements [help.KeyMap].
func (k *keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextScreen, k.Refresh, k.Export, k.Quit}
}

// FullHelp implements [help.KeyMap].
func (k *keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Help, k.Quit, k.NextScreen, k.PrevScreen},
		{k.Up, k.Down, k.More, k.Refresh},
		{k.Export, k.Profiles, k.Confirm, k.Dismiss},
	}
}

// route translates a key press into an action. Global bindings match
// first; unmatched keys go to the popup when one is open, then to the
// active screen. A nil return means the key was consumed without a
// state change.
func (k *keyMap) route(msg tea.KeyMsg, app *App) Action {
	switch {
	case key.Matches(msg, k.Quit):
		// Quit is unconditional even under a popup.
		return Quit{}
	case key.Matches(msg, k.Help):
		if app.Popup == nil {
			return OpenHelp{}
		}
		return DismissPopup{}
	}

	if app.Popup != nil {
		return k.routePopup(msg, app.Popup)
	}

	switch {
	case key.Matches(msg, k.NextScreen):
		return CycleScreen{Forward: true}
	case key.Matches(msg, k.PrevScreen):
		return CycleScreen{Forward: false}
	case key.Matches(msg, k.Up):
		return MoveCursor{Delta: -1}
	case key.Matches(msg, k.Down):
		return MoveCursor{Delta: 1}
	case key.Matches(msg, k.Refresh):
		return RequestRefresh{}
	case key.Matches(msg, k.Export):
		return OpenExport{}
	case key.Matches(msg, k.Profiles):
		return OpenProfileSelector{}
	case key.Matches(msg, k.More):
		return LoadMore{}
	case key.Matches(msg, k.Confirm):
		if app.Screen == ScreenSearch {
			return SubmitSearch{}
		}
	}
	return nil
}

func (k *keyMap) routePopup(msg tea.KeyMsg, p *Popup) Action {
	switch {
	case key.Matches(msg, k.Dismiss):
		return DismissPopup{}
	case key.Matches(msg, k.Confirm):
		return ConfirmPopup{}
	case key.Matches(msg, k.Up):
		if p.Kind == PopupProfileSelector {
			if p.Cursor > 0 {
				p.Cursor--
			}
			return nil
		}
		if p.Scroll > 0 {
			p.Scroll--
		}
		return nil
	case key.Matches(msg, k.Down):
		if p.Kind == PopupProfileSelector {
			if p.Cursor < len(p.Choices)-1 {
				p.Cursor++
			}
			return nil
		}
		if p.Scroll < len(p.Lines)-1 {
			p.Scroll++
		}
		return nil
	case msg.String() == "tab" && p.Kind == PopupExport:
		return ToggleExportFormat{}
	}
	return nil
}
