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
	"context"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
)

// Model is the [tea.Model] driving splunktop. bubbletea delivers key,
// mouse and resize events on its own channel; side-effect completions
// arrive through the bounded ActionQueue and are pumped into the
// program by the listen command.
type Model struct {
	app        *App
	keys       *keyMap
	help       help.Model
	queue      *ActionQueue
	dispatcher *Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
}

// ModelConfig configures NewModel.
type ModelConfig struct {
	Dispatcher *DispatcherConfig
	State      *config.State
}

// NewModel wires the app state, keymap and dispatcher together.
func NewModel(ctx context.Context, cfg ModelConfig) (*Model, error) {
	if cfg.Dispatcher == nil {
		return nil, trace.BadParameter("missing parameter Dispatcher")
	}
	queue := cfg.Dispatcher.Queue
	if queue == nil {
		queue = NewActionQueue(0)
		cfg.Dispatcher.Queue = queue
	}
	dispatcher, err := NewDispatcher(*cfg.Dispatcher)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	keys := newDefaultKeymap()
	if cfg.State != nil {
		keys.applyOverrides(cfg.State.Keybindings)
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		app:        NewApp(cfg.State),
		keys:       keys,
		help:       help.New(),
		queue:      queue,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// tickMsg drives redraw and toast expiry.
type tickMsg time.Time

// queueMsg wraps an action pumped from the ActionQueue.
type queueMsg struct {
	action Action
	ok     bool
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(defaults.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listen pumps the next queued action into the program.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		action, ok := m.queue.Recv()
		return queueMsg{action: action, ok: ok}
	}
}

// Init starts the ticker, the queue pump and the initial load.
func (m *Model) Init() tea.Cmd {
	m.apply(SwitchScreen{To: m.app.Screen})
	return tea.Batch(m.tick(), m.listen())
}

// apply reduces an action and dispatches its effects.
func (m *Model) apply(action Action) {
	effects := m.app.Apply(action)
	m.dispatcher.Dispatch(m.ctx, effects)
}

// Update routes messages into the reducer.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().GetFrameSize()
		m.apply(Resize{Width: msg.Width - h, Height: msg.Height - v})

	case tea.KeyMsg:
		if action := m.routeKey(msg); action != nil {
			m.apply(action)
		}
		if m.app.Quitting() {
			return m, m.shutdown()
		}

	case tickMsg:
		m.apply(Tick{At: time.Time(msg)})
		return m, m.tick()

	case queueMsg:
		if !msg.ok {
			return m, nil
		}
		m.apply(msg.action)
		if m.app.Quitting() {
			return m, m.shutdown()
		}
		return m, m.listen()
	}
	return m, nil
}

// routeKey translates key input, handling free-text entry on the search
// screen before the keymap sees the event.
func (m *Model) routeKey(msg tea.KeyMsg) Action {
	if m.app.Screen == ScreenSearch && m.app.Popup == nil {
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace:
			return SetQuery{Text: m.app.Search.Query + string(msg.Runes)}
		case tea.KeyBackspace:
			if q := m.app.Search.Query; q != "" {
				// Trim a whole rune, not a byte, or multibyte SPL input
				// degrades into invalid UTF-8.
				_, size := utf8.DecodeLastRuneInString(q)
				return SetQuery{Text: q[:len(q)-size]}
			}
			return nil
		}
	}
	return m.keys.route(msg, m.app)
}

// shutdown cancels outstanding tasks and quits once they settle.
func (m *Model) shutdown() tea.Cmd {
	m.cancel()
	return func() tea.Msg {
		waitCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = m.dispatcher.Wait(waitCtx)
		return tea.Quit()
	}
}

// View renders the whole screen.
func (m *Model) View() string {
	header := headerView(m.app)
	footer := m.help.View(m.keys)

	content := contentView(m.app)
	if m.app.Popup != nil {
		content = popupView(m.app.Popup)
	} else if checklist := onboardingView(m.app); checklist != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, checklist, content)
	}
	if toasts := toastView(m.app); toasts != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, toasts)
	}

	body := lipgloss.NewStyle().
		Height(max(m.app.Height-lipgloss.Height(header)-lipgloss.Height(footer), 0)).
		Width(m.app.Width).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Run drives the program to completion.
func Run(ctx context.Context, cfg ModelConfig) error {
	m, err := NewModel(ctx, cfg)
	if err != nil {
		return trace.Wrap(err)
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return trace.Wrap(err)
}
