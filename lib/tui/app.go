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
	"time"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/multi"
	"github.com/splunkctl/splunkctl/lib/output"
)

// Screen is one of the top-level views. The set is closed.
type Screen int

const (
	ScreenSearch Screen = iota
	ScreenJobs
	ScreenIndexes
	ScreenCluster
	ScreenHealth
	ScreenKvstore
	ScreenLicense
	ScreenSavedSearches
	ScreenMacros
	ScreenInternalLogs
	ScreenApps
	ScreenUsers
	ScreenRoles
	ScreenSearchPeers
	ScreenInputs
	ScreenConfigs
	ScreenSettings
	ScreenOverview
	ScreenMultiInstance
	ScreenFiredAlerts
	ScreenForwarders
	ScreenLookups
	ScreenAudit
	ScreenJobInspect

	screenCount
)

var screenNames = [screenCount]string{
	"Search", "Jobs", "Indexes", "Cluster", "Health", "KV Store",
	"License", "Saved Searches", "Macros", "Internal Logs", "Apps",
	"Users", "Roles", "Search Peers", "Inputs", "Configs", "Settings",
	"Overview", "Multi-Instance", "Fired Alerts", "Forwarders",
	"Lookups", "Audit", "Job Inspect",
}

// String returns the display name.
func (s Screen) String() string {
	if s < 0 || s >= screenCount {
		return "Unknown"
	}
	return screenNames[s]
}

// Next cycles forward.
func (s Screen) Next() Screen {
	return (s + 1) % screenCount
}

// Prev cycles backward.
func (s Screen) Prev() Screen {
	return (s - 1 + screenCount) % screenCount
}

// ListState is the navigable slice behind a list screen.
type ListState struct {
	Items  []output.ResourceDisplay
	Offset int
	// Total is the server-side count, -1 when unknown.
	Total  int
	Cursor int
}

// HasMore reports whether another page exists server-side.
func (l *ListState) HasMore() bool {
	return l.Total < 0 || len(l.Items) < l.Total
}

// PopupKind identifies the open popup.
type PopupKind int

const (
	PopupHelp PopupKind = iota
	PopupConfirm
	PopupErrorDetails
	PopupExport
	PopupProfileSelector
	PopupOnboarding
)

// Popup owns the transient state of the single open dialog.
type Popup struct {
	Kind  PopupKind
	Title string
	// Lines is scrollable body text (help, error details).
	Lines  []string
	Scroll int
	// OnConfirm is dispatched when a confirm popup is accepted.
	OnConfirm Effect
	// Export form state.
	Export ExportForm
	// Choices backs the profile selector.
	Choices []string
	Cursor  int
}

// Toast is a transient notification.
type Toast struct {
	Level   NotifyLevel
	Text    string
	Expires time.Time
}

// SearchState is the search screen's model.
type SearchState struct {
	Query string
	// Validation carries SPL parser messages for the current query.
	Validation []string
	Running    bool
	Progress   float64
	SID        string
	Results    *client.SearchResults
}

// App is the whole UI state. It is owned by the event loop: exactly one
// goroutine mutates it.
type App struct {
	Width  int
	Height int

	Screen  Screen
	Loading bool
	Popup   *Popup
	Toasts  []Toast

	Profile  string
	Profiles []string

	Lists  map[Screen]*ListState
	Search SearchState
	Health *client.HealthCheckOutput
	Info   *client.ServerInfo
	// License backs the overview sparkline.
	License []client.LicenseUsage
	Multi   *multi.Report

	Onboarding config.Onboarding
	// hintsShown rate-limits onboarding hints for this session.
	hintsShown int
	// navSteps counts screen switches toward the navigation milestone.
	navSteps int

	quitting bool
}

// NewApp builds the initial state from the persisted config.
func NewApp(state *config.State) *App {
	app := &App{
		Screen: ScreenOverview,
		Lists:  make(map[Screen]*ListState),
	}
	if state != nil {
		app.Profile = state.ActiveProfile
		app.Profiles = state.ProfileNames()
		app.Onboarding = state.Onboarding
	}
	return app
}

// list returns the active screen's list state, creating it on demand.
func (a *App) list(s Screen) *ListState {
	l, ok := a.Lists[s]
	if !ok {
		l = &ListState{Total: -1}
		a.Lists[s] = l
	}
	return l
}

// OpenPopup opens a dialog unless one is already active. Stack depth is
// one: a second popup is refused, not stacked.
func (a *App) OpenPopup(p *Popup) bool {
	if a.Popup != nil {
		return false
	}
	a.Popup = p
	return true
}

// ClosePopup dismisses the active dialog.
func (a *App) ClosePopup() {
	a.Popup = nil
}

// HintAllowed reports whether another onboarding hint may be shown this
// session, consuming one slot when it is.
func (a *App) HintAllowed() bool {
	if a.hintsShown >= defaults.MaxHintsPerSession {
		return false
	}
	a.hintsShown++
	return true
}

// Quitting reports whether shutdown was requested.
func (a *App) Quitting() bool {
	return a.quitting
}
