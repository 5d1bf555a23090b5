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

// Package tui implements the splunktop runtime: a single-writer reducer
// over a bounded action stream, with side effects executed
// asynchronously and their completions re-entering the stream as new
// actions.
package tui

import (
	"time"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/multi"
	"github.com/splunkctl/splunkctl/lib/output"
)

// Action is one message on the event stream. The set is closed: every
// variant lives in this file.
type Action interface {
	isAction()
}

// Tick drives toast expiry and auto-refresh bookkeeping.
type Tick struct {
	At time.Time
}

// Resize carries the new terminal dimensions.
type Resize struct {
	Width  int
	Height int
}

// Loading toggles the spinner.
type Loading struct {
	On bool
}

// NotifyLevel grades a toast.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifySuccess
	NotifyError
)

// Notify shows a toast.
type Notify struct {
	Level NotifyLevel
	Text  string
}

// ResourceLoaded replaces a screen's list with a fresh page.
type ResourceLoaded struct {
	Screen Screen
	Items  []output.ResourceDisplay
	Offset int
	Total  int
}

// MoreResourceLoaded appends a further page to a screen's list.
type MoreResourceLoaded struct {
	Screen Screen
	Items  []output.ResourceDisplay
	Offset int
	Total  int
}

// Progress reports search completion as a fraction in [0, 1].
type Progress struct {
	Fraction float64
}

// SearchResultsLoaded delivers the first page of a finished search.
type SearchResultsLoaded struct {
	Results *client.SearchResults
	SID     string
}

// MoreSearchResultsLoaded delivers a further page fetched by SID.
type MoreSearchResultsLoaded struct {
	Results *client.SearchResults
}

// ValidateResult annotates the search input with parser messages. Query
// echoes the validated text so stale results can be dropped.
type ValidateResult struct {
	Query    string
	Messages []string
}

// HealthLoaded delivers the splunkd health report.
type HealthLoaded struct {
	Report *client.HealthCheckOutput
}

// OverviewLoaded delivers the overview screen's data.
type OverviewLoaded struct {
	Info    *client.ServerInfo
	License []client.LicenseUsage
}

// MultiReportLoaded delivers a multi-profile aggregation.
type MultiReportLoaded struct {
	Report *multi.Report
}

// ProfileSwitched completes a profile switch. On success the reducer
// emits ClearAllData and reloads the active screen.
type ProfileSwitched struct {
	Name string
	Err  error
}

// ClearAllData drops every cached resource slice.
type ClearAllData struct{}

// ExportDone completes an export flow.
type ExportDone struct {
	Path string
	Err  error
}

// Cancelled is emitted when a long operation was interrupted.
type Cancelled struct{}

// Quit asks the main loop to shut down.
type Quit struct{}

// CycleScreen moves to the adjacent screen.
type CycleScreen struct {
	Forward bool
}

// SwitchScreen jumps to a specific screen.
type SwitchScreen struct {
	To Screen
}

// MoveCursor moves the active list selection.
type MoveCursor struct {
	Delta int
}

// RequestRefresh reloads the active screen from offset zero.
type RequestRefresh struct{}

// LoadMore requests the next page of the active list or search.
type LoadMore struct{}

// OpenHelp shows the help popup.
type OpenHelp struct{}

// OpenExport opens the export dialog for the active screen.
type OpenExport struct{}

// OpenProfileSelector opens the profile switcher.
type OpenProfileSelector struct{}

// ConfirmPopup accepts the open dialog.
type ConfirmPopup struct{}

// DismissPopup closes the open dialog without effect.
type DismissPopup struct{}

// ToggleExportFormat flips the export dialog between JSON and CSV.
type ToggleExportFormat struct{}

// SetQuery replaces the search input text.
type SetQuery struct {
	Text string
}

// SubmitSearch runs the current query.
type SubmitSearch struct{}

func (Tick) isAction()                    {}
func (Resize) isAction()                  {}
func (Loading) isAction()                 {}
func (Notify) isAction()                  {}
func (ResourceLoaded) isAction()          {}
func (MoreResourceLoaded) isAction()      {}
func (Progress) isAction()                {}
func (SearchResultsLoaded) isAction()     {}
func (MoreSearchResultsLoaded) isAction() {}
func (ValidateResult) isAction()          {}
func (HealthLoaded) isAction()            {}
func (OverviewLoaded) isAction()          {}
func (MultiReportLoaded) isAction()       {}
func (ProfileSwitched) isAction()         {}
func (ClearAllData) isAction()            {}
func (ExportDone) isAction()              {}
func (Cancelled) isAction()               {}
func (Quit) isAction()                    {}
func (CycleScreen) isAction()             {}
func (SwitchScreen) isAction()            {}
func (MoveCursor) isAction()              {}
func (RequestRefresh) isAction()          {}
func (LoadMore) isAction()                {}
func (OpenHelp) isAction()                {}
func (OpenExport) isAction()              {}
func (OpenProfileSelector) isAction()     {}
func (ConfirmPopup) isAction()            {}
func (DismissPopup) isAction()            {}
func (ToggleExportFormat) isAction()      {}
func (SetQuery) isAction()                {}
func (SubmitSearch) isAction()            {}
