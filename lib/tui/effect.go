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
	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/output"
)

// Effect is a side effect the reducer asks the dispatcher to run. The
// reducer itself never touches the network: it returns effects and the
// dispatcher turns their completions back into actions.
type Effect interface {
	isEffect()
}

// LoadList fetches a page of the screen's resource. Offset zero
// replaces the list; a positive offset appends.
type LoadList struct {
	Screen Screen
	Offset int
}

// RunSearch submits the query and polls it to completion.
type RunSearch struct {
	Params client.SearchParams
}

// LoadMoreResults pages a finished search by SID.
type LoadMoreResults struct {
	SID    string
	Offset int
}

// ValidateQuery debounces an SPL parse check.
type ValidateQuery struct {
	Query string
}

// CancelSearch abandons the running search and opportunistically
// deletes the job server-side.
type CancelSearch struct {
	SID string
}

// SwitchProfile rebuilds the client for another profile.
type SwitchProfile struct {
	Name string
}

// RunExport writes the snapshotted dataset through a formatter. The
// reducer captures the data when the popup is confirmed so the
// dispatcher never reads UI state.
type RunExport struct {
	Form ExportForm
	Data output.Dataset
}

// DeleteResource removes a named resource after confirmation.
type DeleteResource struct {
	Screen Screen
	Name   string
}

// SaveState persists onboarding progress.
type SaveState struct {
	Onboarding config.Onboarding
}

func (LoadList) isEffect()        {}
func (RunSearch) isEffect()       {}
func (LoadMoreResults) isEffect() {}
func (ValidateQuery) isEffect()   {}
func (CancelSearch) isEffect()    {}
func (SwitchProfile) isEffect()   {}
func (RunExport) isEffect()       {}
func (DeleteResource) isEffect()  {}
func (SaveState) isEffect()       {}
