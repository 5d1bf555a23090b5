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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/output"
)

type fakeItem struct {
	name string
}

func (f fakeItem) Headers(bool) []string { return []string{"name"} }
func (f fakeItem) Row(bool) []string     { return []string{f.name} }
func (f fakeItem) XMLElement() string    { return "item" }
func (f fakeItem) XMLFields() []output.Field {
	return []output.Field{{Name: "name", Value: &f.name}}
}

func items(names ...string) []output.ResourceDisplay {
	out := make([]output.ResourceDisplay, 0, len(names))
	for _, n := range names {
		out = append(out, fakeItem{name: n})
	}
	return out
}

func TestResourceLoadedReplacesAndAppends(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("a", "b"), Total: 4})
	require.Len(t, app.Lists[ScreenIndexes].Items, 2)
	require.True(t, app.Lists[ScreenIndexes].HasMore())

	app.Apply(MoreResourceLoaded{Screen: ScreenIndexes, Items: items("c", "d"), Offset: 2, Total: 4})
	require.Len(t, app.Lists[ScreenIndexes].Items, 4)
	require.False(t, app.Lists[ScreenIndexes].HasMore())

	// A fresh page replaces the accumulated list.
	app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("x"), Total: 1})
	require.Len(t, app.Lists[ScreenIndexes].Items, 1)
}

func TestNavigationCycleMarksMilestone(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	start := app.Screen
	for range int(screenCount) {
		effects := app.Apply(CycleScreen{Forward: true})
		require.NotEmpty(t, effects)
	}
	require.Equal(t, start, app.Screen)
	require.NotZero(t, app.Onboarding.Completed&config.MilestoneNavigationCycle)
}

func TestHelpPopupMarksMilestone(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(OpenHelp{})
	require.NotNil(t, app.Popup)
	require.Equal(t, PopupHelp, app.Popup.Kind)
	require.NotZero(t, app.Onboarding.Completed&config.MilestoneHelpOpened)
}

func TestPopupStackDepthIsOne(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	require.True(t, app.OpenPopup(&Popup{Kind: PopupHelp}))
	require.False(t, app.OpenPopup(&Popup{Kind: PopupExport}))
	require.Equal(t, PopupHelp, app.Popup.Kind)

	app.Apply(DismissPopup{})
	require.Nil(t, app.Popup)
}

func TestToastsExpireOnTick(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(Notify{Level: NotifyError, Text: "boom"})
	require.Len(t, app.Toasts, 1)

	now := time.Now()
	app.Apply(Tick{At: now})
	require.Len(t, app.Toasts, 1, "first tick stamps the deadline")

	app.Apply(Tick{At: now.Add(time.Minute)})
	require.Empty(t, app.Toasts)
}

func TestProfileSwitchClearsCaches(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("a"), Total: 1})
	app.Search.Results = &client.SearchResults{Rows: []map[string]string{{"x": "1"}}}

	effects := app.Apply(ProfileSwitched{Name: "prod"})
	require.Equal(t, "prod", app.Profile)
	require.Empty(t, app.Lists)
	require.Nil(t, app.Search.Results)
	require.NotZero(t, app.Onboarding.Completed&config.MilestoneProfileReady)

	// The active screen reloads after the wipe, and the fresh milestone
	// is persisted.
	require.Contains(t, effects, Effect(LoadList{Screen: app.Screen}))
	require.Contains(t, effects, Effect(SaveState{Onboarding: app.Onboarding}))
}

func TestProfileSwitchFailureKeepsData(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Profile = "dev"
	app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("a"), Total: 1})

	app.Apply(ProfileSwitched{Name: "prod", Err: errTest})
	require.Equal(t, "dev", app.Profile)
	require.Len(t, app.Lists[ScreenIndexes].Items, 1)
	require.NotEmpty(t, app.Toasts)
}

func TestStaleValidationIsDropped(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(SetQuery{Text: "index=main"})
	app.Apply(ValidateResult{Query: "index=m", Messages: []string{"unbalanced"}})
	require.Empty(t, app.Search.Validation, "stale result for older text")

	app.Apply(ValidateResult{Query: "index=main", Messages: []string{"warn"}})
	require.Equal(t, []string{"warn"}, app.Search.Validation)
}

func TestShortQuerySkipsValidation(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	require.Empty(t, app.Apply(SetQuery{Text: "ix"}))
	require.NotEmpty(t, app.Apply(SetQuery{Text: "index"}))
}

func TestSubmitSearchIsIdempotentWhileRunning(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Apply(SetQuery{Text: "index=main"})
	require.NotEmpty(t, app.Apply(SubmitSearch{}))
	require.True(t, app.Search.Running)
	require.Empty(t, app.Apply(SubmitSearch{}), "second submit while running is a no-op")

	app.Apply(SearchResultsLoaded{Results: &client.SearchResults{Total: 1}, SID: "sid1"})
	require.False(t, app.Search.Running)
	require.NotZero(t, app.Onboarding.Completed&config.MilestoneFirstSearchRun)
}

func TestHintRateLimit(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	for range 3 {
		require.True(t, app.HintAllowed())
	}
	require.False(t, app.HintAllowed())
}

func TestMilestonePersistsOnTransitionOnly(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)

	// The first successful load crosses the connection milestone and
	// asks the dispatcher to persist it.
	effects := app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("a"), Total: 1})
	require.Contains(t, effects, Effect(SaveState{Onboarding: app.Onboarding}))

	// A repeat load is not a transition: nothing to save.
	require.Empty(t, app.Apply(ResourceLoaded{Screen: ScreenIndexes, Items: items("a"), Total: 1}))

	// Opening help crosses its own milestone and persists again.
	effects = app.Apply(OpenHelp{})
	require.Contains(t, effects, Effect(SaveState{Onboarding: app.Onboarding}))
	app.Apply(DismissPopup{})
	require.Empty(t, app.Apply(OpenHelp{}))
}

func TestSearchMilestonePersists(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	effects := app.Apply(SearchResultsLoaded{Results: &client.SearchResults{Total: 1}, SID: "sid1"})
	require.Contains(t, effects, Effect(SaveState{Onboarding: app.Onboarding}))
	require.NotZero(t, app.Onboarding.Completed&config.MilestoneFirstSearchRun)

	require.Empty(t, app.Apply(SearchResultsLoaded{Results: &client.SearchResults{Total: 1}, SID: "sid2"}))
}

var errTest = errTestType{}

type errTestType struct{}

func (errTestType) Error() string { return "kaboom" }
