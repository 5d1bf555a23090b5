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
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/utils"
)

// Milestone is one bit of the onboarding checklist.
type Milestone uint8

const (
	MilestoneProfileReady Milestone = 1 << iota
	MilestoneConnectionVerified
	MilestoneFirstSearchRun
	MilestoneNavigationCycle
	MilestoneHelpOpened

	// MilestonesAll is the completed checklist.
	MilestonesAll = MilestoneProfileReady | MilestoneConnectionVerified |
		MilestoneFirstSearchRun | MilestoneNavigationCycle | MilestoneHelpOpened
)

// Onboarding tracks checklist progress across sessions.
type Onboarding struct {
	// Completed is the milestone bitset.
	Completed Milestone `json:"completed"`
	// Dismissed hides individual items; DismissedAll hides the whole
	// checklist forever.
	Dismissed    Milestone `json:"dismissed,omitempty"`
	DismissedAll bool      `json:"dismissed_all,omitempty"`
	// SessionsSinceComplete counts sessions started after the last
	// milestone completed, driving auto-hide.
	SessionsSinceComplete int `json:"sessions_since_complete,omitempty"`
}

// Mark records a milestone; marking twice is a no-op.
func (o *Onboarding) Mark(m Milestone) {
	o.Completed |= m
}

// Done reports whether every milestone completed.
func (o *Onboarding) Done() bool {
	return o.Completed&MilestonesAll == MilestonesAll
}

// Visible reports whether the checklist should still be shown.
func (o *Onboarding) Visible() bool {
	if o.DismissedAll {
		return false
	}
	if o.Done() && o.SessionsSinceComplete >= defaults.OnboardingAutoHideSessions {
		return false
	}
	return true
}

// SearchDefaults are the persisted defaults for new searches.
type SearchDefaults struct {
	EarliestTime string `json:"earliest_time,omitempty"`
	LatestTime   string `json:"latest_time,omitempty"`
	MaxResults   int    `json:"max_results,omitempty"`
}

// InternalLogDefaults are the persisted defaults for internal log tailing.
type InternalLogDefaults struct {
	Filter string `json:"filter,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// State is the durable user state persisted as JSON.
type State struct {
	// Profiles is the connection catalog, keyed by name.
	Profiles map[string]Profile `json:"profiles,omitempty"`
	// ActiveProfile is the last selected profile name.
	ActiveProfile string `json:"active_profile,omitempty"`

	SearchDefaults      SearchDefaults      `json:"search_defaults,omitempty"`
	InternalLogDefaults InternalLogDefaults `json:"internal_log_defaults,omitempty"`

	Onboarding Onboarding `json:"onboarding,omitempty"`

	// Keybindings maps action names to key overrides.
	Keybindings map[string]string `json:"keybindings,omitempty"`
	Theme       string            `json:"theme,omitempty"`
	AutoRefresh bool              `json:"auto_refresh,omitempty"`
	SortColumn  string            `json:"sort_column,omitempty"`
	SortAsc     bool              `json:"sort_asc,omitempty"`

	// SearchHistory is a bounded ring, newest first.
	SearchHistory []string `json:"search_history,omitempty"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Profiles: make(map[string]Profile)}
}

// ProfileNames returns the catalog keys in sorted order.
func (s *State) ProfileNames() []string {
	return slices.Sorted(maps.Keys(s.Profiles))
}

// AddSearchHistory prepends a query, dropping duplicates and trimming
// the ring to its bound.
func (s *State) AddSearchHistory(query string) {
	if query == "" {
		return
	}
	history := make([]string, 0, len(s.SearchHistory)+1)
	history = append(history, query)
	for _, q := range s.SearchHistory {
		if q != query {
			history = append(history, q)
		}
	}
	if len(history) > defaults.SearchHistorySize {
		history = history[:defaults.SearchHistorySize]
	}
	s.SearchHistory = history
}

// Manager loads and saves the state file. All file access happens under
// an exclusive section; Load and Save each cover the whole file.
type Manager struct {
	path   string
	cipher *Cipher
	clock  clockwork.Clock
	log    *slog.Logger

	mu    sync.Mutex
	state *State
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Path is the state file location; empty means the default path in
	// the user config dir.
	Path string
	// Cipher enables encryption at rest when set.
	Cipher *Cipher
	// Clock overrides time in tests.
	Clock clockwork.Clock
	// Logger receives corruption warnings.
	Logger *slog.Logger
}

// NewManager builds a Manager and loads the state file. A corrupt file
// is archived to config.corrupt.<unix-ts> and replaced with defaults;
// the original content is never silently destroyed.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	path := cfg.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, trace.Wrap(err, "locating user config directory")
		}
		path = filepath.Join(dir, "splunkctl", defaults.ConfigFileName)
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m := &Manager{
		path:   path,
		cipher: cfg.Cipher,
		clock:  cfg.Clock,
		log:    cfg.Logger,
	}
	if err := m.load(); err != nil {
		return nil, trace.Wrap(err)
	}
	return m, nil
}

// Path returns the state file location.
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = NewState()
			return nil
		}
		return trace.ConvertSystemError(err)
	}

	state, decodeErr := m.decode(data)
	if decodeErr == nil {
		m.state = state
		return nil
	}

	// Archive the broken file and start over with defaults. If even the
	// rename fails, leave the file on disk untouched.
	backup := fmt.Sprintf("%s.corrupt.%d", filepath.Join(filepath.Dir(m.path), "config"), m.clock.Now().Unix())
	if renameErr := os.Rename(m.path, backup); renameErr != nil {
		m.log.Warn("config file is corrupt and could not be archived, using defaults",
			"path", m.path, "error", decodeErr, "rename_error", renameErr)
	} else {
		m.log.Warn("config file is corrupt, archived and replaced with defaults",
			"path", m.path, "backup", backup, "error", decodeErr)
	}
	m.state = NewState()
	return nil
}

func (m *Manager) decode(data []byte) (*State, error) {
	if m.cipher != nil {
		plaintext, err := m.cipher.Decrypt(data)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		data = plaintext
	}
	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, trace.Wrap(err, "parsing config file")
	}
	if state.Profiles == nil {
		state.Profiles = make(map[string]Profile)
	}
	return state, nil
}

// State returns a deep-enough copy of the current state for reading and
// staging modifications. Mutations become durable only through Save.
func (m *Manager) State() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *m.state
	copied.Profiles = maps.Clone(m.state.Profiles)
	copied.Keybindings = maps.Clone(m.state.Keybindings)
	copied.SearchHistory = slices.Clone(m.state.SearchHistory)
	return &copied
}

// Save persists state atomically (temp file, fsync, rename) and makes it
// the manager's current state.
func (m *Manager) Save(state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	if m.cipher != nil {
		if data, err = m.cipher.Encrypt(data); err != nil {
			return trace.Wrap(err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return trace.ConvertSystemError(err)
	}
	if err := utils.WriteFileAtomic(m.path, data, 0o600); err != nil {
		return trace.Wrap(err, "saving config file")
	}
	m.state = state
	return nil
}

// Update applies fn to a copy of the current state and persists the
// result.
func (m *Manager) Update(fn func(state *State)) error {
	state := m.State()
	fn(state)
	return trace.Wrap(m.Save(state))
}

// UpsertProfile validates and stores a profile, persisting immediately.
func (m *Manager) UpsertProfile(p Profile) error {
	if err := p.Check(); err != nil {
		return trace.Wrap(err)
	}
	state := m.State()
	state.Profiles[p.Name] = p
	return trace.Wrap(m.Save(state))
}

// DeleteProfile removes a profile by name.
func (m *Manager) DeleteProfile(name string) error {
	state := m.State()
	if _, ok := state.Profiles[name]; !ok {
		return trace.NotFound("profile %q not found", name)
	}
	delete(state.Profiles, name)
	if state.ActiveProfile == name {
		state.ActiveProfile = ""
	}
	return trace.Wrap(m.Save(state))
}

// GetProfile returns a profile by name.
func (m *Manager) GetProfile(name string) (*Profile, error) {
	state := m.State()
	p, ok := state.Profiles[name]
	if !ok {
		return nil, trace.NotFound("profile %q not found (have: %v)", name, state.ProfileNames())
	}
	return &p, nil
}
