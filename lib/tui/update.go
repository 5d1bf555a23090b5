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

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/output"
)

// Apply reduces one action into the state and returns the side effects
// to dispatch. It is pure apart from mutating the receiver: no I/O, no
// clocks beyond the timestamps actions carry.
func (a *App) Apply(action Action) []Effect {
	switch action := action.(type) {
	case Tick:
		a.expireToasts(action.At)

	case Resize:
		a.Width, a.Height = action.Width, action.Height

	case Loading:
		a.Loading = action.On

	case Notify:
		// Expiry is stamped relative to the next tick so the reducer
		// stays clock-free.
		a.Toasts = append(a.Toasts, Toast{Level: action.Level, Text: action.Text})

	case ResourceLoaded:
		l := a.list(action.Screen)
		l.Items = action.Items
		l.Offset = action.Offset
		l.Total = action.Total
		if l.Cursor >= len(l.Items) {
			l.Cursor = 0
		}
		return a.markMilestone(config.MilestoneConnectionVerified)

	case MoreResourceLoaded:
		l := a.list(action.Screen)
		l.Items = append(l.Items, action.Items...)
		l.Offset = action.Offset
		l.Total = action.Total

	case Progress:
		a.Search.Progress = action.Fraction

	case SearchResultsLoaded:
		a.Search.Running = false
		a.Search.Progress = 1
		a.Search.SID = action.SID
		a.Search.Results = action.Results
		return a.markMilestone(config.MilestoneFirstSearchRun)

	case MoreSearchResultsLoaded:
		if a.Search.Results == nil {
			a.Search.Results = action.Results
			break
		}
		a.Search.Results.Rows = append(a.Search.Results.Rows, action.Results.Rows...)
		a.Search.Results.Total = action.Results.Total

	case ValidateResult:
		// Drop results for text the user has already changed.
		if action.Query == a.Search.Query {
			a.Search.Validation = action.Messages
		}

	case HealthLoaded:
		a.Health = action.Report
		return a.markMilestone(config.MilestoneConnectionVerified)

	case OverviewLoaded:
		a.Info = action.Info
		a.License = action.License
		return a.markMilestone(config.MilestoneConnectionVerified)

	case MultiReportLoaded:
		a.Multi = action.Report

	case ProfileSwitched:
		if action.Err != nil {
			a.Toasts = append(a.Toasts, Toast{Level: NotifyError, Text: action.Err.Error()})
			break
		}
		a.Profile = action.Name
		return append(a.markMilestone(config.MilestoneProfileReady), a.Apply(ClearAllData{})...)

	case ClearAllData:
		a.Lists = make(map[Screen]*ListState)
		a.Health = nil
		a.Info = nil
		a.License = nil
		a.Multi = nil
		a.Search.Results = nil
		a.Search.SID = ""
		return []Effect{LoadList{Screen: a.Screen}}

	case ExportDone:
		a.ClosePopup()
		if action.Err != nil {
			a.Toasts = append(a.Toasts, Toast{Level: NotifyError, Text: action.Err.Error()})
		} else {
			a.Toasts = append(a.Toasts, Toast{Level: NotifySuccess, Text: "exported to " + action.Path})
		}

	case Cancelled:
		a.Search.Running = false
		a.Toasts = append(a.Toasts, Toast{Level: NotifyInfo, Text: "cancelled"})

	case Quit:
		a.quitting = true

	case CycleScreen:
		if action.Forward {
			a.Screen = a.Screen.Next()
		} else {
			a.Screen = a.Screen.Prev()
		}
		a.navSteps++
		effects := []Effect{LoadList{Screen: a.Screen}}
		if a.navSteps >= int(screenCount) {
			effects = append(a.markMilestone(config.MilestoneNavigationCycle), effects...)
		}
		return effects

	case SwitchScreen:
		a.Screen = action.To
		return []Effect{LoadList{Screen: a.Screen}}

	case MoveCursor:
		l := a.list(a.Screen)
		l.Cursor += action.Delta
		if l.Cursor < 0 {
			l.Cursor = 0
		}
		if n := len(l.Items); n > 0 && l.Cursor >= n {
			l.Cursor = n - 1
		}

	case RequestRefresh:
		return []Effect{LoadList{Screen: a.Screen}}

	case LoadMore:
		if a.Screen == ScreenSearch {
			if a.Search.Results != nil && a.Search.SID != "" {
				offset := a.Search.Results.Offset + len(a.Search.Results.Rows)
				if a.Search.Results.Total < 0 || offset < a.Search.Results.Total {
					return []Effect{LoadMoreResults{SID: a.Search.SID, Offset: offset}}
				}
			}
			break
		}
		l := a.list(a.Screen)
		if l.HasMore() {
			return []Effect{LoadList{Screen: a.Screen, Offset: l.Offset + len(l.Items)}}
		}

	case OpenHelp:
		if a.OpenPopup(&Popup{Kind: PopupHelp, Title: "Help", Lines: helpLines()}) {
			return a.markMilestone(config.MilestoneHelpOpened)
		}

	case OpenExport:
		form := NewExportForm(ExportTargetFor(a.Screen))
		a.OpenPopup(&Popup{Kind: PopupExport, Title: "Export", Export: form})

	case OpenProfileSelector:
		a.OpenPopup(&Popup{Kind: PopupProfileSelector, Title: "Switch Profile", Choices: a.Profiles})

	case ToggleExportFormat:
		if p := a.Popup; p != nil && p.Kind == PopupExport {
			p.Export.Toggle()
		}

	case ConfirmPopup:
		p := a.Popup
		if p == nil {
			break
		}
		switch p.Kind {
		case PopupExport:
			data, err := a.exportDataset()
			if err != nil {
				a.ClosePopup()
				a.Toasts = append(a.Toasts, Toast{Level: NotifyError, Text: err.Error()})
				break
			}
			return []Effect{RunExport{Form: p.Export, Data: data}}
		case PopupProfileSelector:
			a.ClosePopup()
			if p.Cursor >= 0 && p.Cursor < len(p.Choices) {
				return []Effect{SwitchProfile{Name: p.Choices[p.Cursor]}}
			}
		case PopupConfirm:
			a.ClosePopup()
			if p.OnConfirm != nil {
				return []Effect{p.OnConfirm}
			}
		default:
			a.ClosePopup()
		}

	case DismissPopup:
		a.ClosePopup()

	case SetQuery:
		a.Search.Query = action.Text
		a.Search.Validation = nil
		if len(action.Text) >= defaults.ValidateMinQueryLength {
			return []Effect{ValidateQuery{Query: action.Text}}
		}

	case SubmitSearch:
		if a.Search.Running || a.Search.Query == "" {
			break
		}
		a.Search.Running = true
		a.Search.Progress = 0
		a.Search.Results = nil
		return []Effect{RunSearch{Params: client.SearchParams{Query: a.Search.Query}}}
	}
	return nil
}

// expireToasts stamps fresh toasts with a deadline and drops the stale
// ones. Stamping happens here so Notify itself needs no clock.
func (a *App) expireToasts(now time.Time) {
	kept := a.Toasts[:0]
	for _, toast := range a.Toasts {
		if toast.Expires.IsZero() {
			toast.Expires = now.Add(defaults.ToastTTL)
		}
		if toast.Expires.After(now) {
			kept = append(kept, toast)
		}
	}
	a.Toasts = kept
}

// markMilestone records onboarding progress idempotently, returning a
// SaveState effect only on an actual transition so repeat events never
// rewrite the state file.
func (a *App) markMilestone(m config.Milestone) []Effect {
	if a.Onboarding.Completed&m != 0 {
		return nil
	}
	a.Onboarding.Mark(m)
	return []Effect{SaveState{Onboarding: a.Onboarding}}
}

// exportDataset snapshots the active screen's data for an export task.
func (a *App) exportDataset() (output.Dataset, error) {
	var d output.Dataset
	switch a.Screen {
	case ScreenSearch, ScreenInternalLogs:
		if a.Search.Results == nil {
			return d, trace.NotFound("no search results to export")
		}
		return output.DynamicDataset(a.Search.Results.Fields, a.Search.Results.Rows), nil
	default:
		l, ok := a.Lists[a.Screen]
		if !ok || len(l.Items) == 0 {
			return d, trace.NotFound("nothing to export on this screen")
		}
		d.Records = append([]output.ResourceDisplay(nil), l.Items...)
		for _, item := range l.Items {
			d.Native = append(d.Native, item)
		}
		return d, nil
	}
}
