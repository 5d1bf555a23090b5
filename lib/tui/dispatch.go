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
	"sync"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/output"
)

// ClientBuilder rebuilds the client for a profile, logging in when the
// profile is session-based.
type ClientBuilder func(ctx context.Context, profile string) (*client.Client, error)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Client  *client.Client
	Queue   *ActionQueue
	Builder ClientBuilder
	// Manager persists UI state; optional.
	Manager *config.Manager
	Clock   clockwork.Clock
}

// CheckAndSetDefaults validates the config.
func (c *DispatcherConfig) CheckAndSetDefaults() error {
	if c.Client == nil {
		return trace.BadParameter("missing parameter Client")
	}
	if c.Queue == nil {
		return trace.BadParameter("missing parameter Queue")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Dispatcher executes effects as async tasks. Completions re-enter the
// action queue; every task is tracked so shutdown can await them.
type Dispatcher struct {
	cfg DispatcherConfig

	mu sync.Mutex
	// clt is swapped on profile switch; held only per call.
	clt *client.Client
	// validateGen drops superseded debounced validations.
	validateGen int

	tasks sync.WaitGroup
}

// NewDispatcher builds a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if err := cfg.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Dispatcher{cfg: cfg, clt: cfg.Client}, nil
}

func (d *Dispatcher) client() *client.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clt
}

// Dispatch starts each effect as a tracked task.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []Effect) {
	for _, effect := range effects {
		d.tasks.Add(1)
		go func() {
			defer d.tasks.Done()
			d.run(ctx, effect)
		}()
	}
}

// Wait blocks until all in-flight tasks finish or ctx expires.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return trace.Wrap(ctx.Err())
	}
}

func (d *Dispatcher) send(ctx context.Context, action Action) {
	// Completions block-send; a dropped completion would wedge the UI.
	_ = d.cfg.Queue.Send(ctx, action)
}

func (d *Dispatcher) notifyError(ctx context.Context, err error) {
	d.send(ctx, Notify{Level: NotifyError, Text: trace.UserMessage(err)})
}

func (d *Dispatcher) run(ctx context.Context, effect Effect) {
	switch effect := effect.(type) {
	case LoadList:
		d.loadList(ctx, effect)
	case RunSearch:
		d.runSearch(ctx, effect)
	case LoadMoreResults:
		d.loadMoreResults(ctx, effect)
	case ValidateQuery:
		d.validate(ctx, effect)
	case CancelSearch:
		// Best effort; the job may already be gone.
		_ = d.client().DeleteJob(ctx, effect.SID)
		d.send(ctx, Cancelled{})
	case SwitchProfile:
		d.switchProfile(ctx, effect)
	case RunExport:
		d.send(ctx, ExportDone{Path: effect.Form.Filename, Err: WriteExport(effect.Form, effect.Data)})
	case DeleteResource:
		d.deleteResource(ctx, effect)
	case SaveState:
		d.saveState(ctx, effect)
	}
}

// fetchPage maps a screen to its list call. Detail screens load through
// their own effects and return nil here.
func fetchPage(ctx context.Context, clt *client.Client, screen Screen, page client.Page) ([]output.ResourceDisplay, int, error) {
	switch screen {
	case ScreenJobs:
		items, total, err := clt.ListJobs(ctx, page)
		return asDisplay(items), total, err
	case ScreenIndexes:
		items, total, err := clt.ListIndexes(ctx, page)
		return asDisplay(items), total, err
	case ScreenApps:
		items, total, err := clt.ListApps(ctx, page)
		return asDisplay(items), total, err
	case ScreenUsers:
		items, total, err := clt.ListUsers(ctx, page)
		return asDisplay(items), total, err
	case ScreenRoles:
		items, total, err := clt.ListRoles(ctx, page)
		return asDisplay(items), total, err
	case ScreenSavedSearches:
		items, total, err := clt.ListSavedSearches(ctx, page)
		return asDisplay(items), total, err
	case ScreenMacros:
		items, total, err := clt.ListMacros(ctx, page)
		return asDisplay(items), total, err
	case ScreenSearchPeers:
		items, total, err := clt.ListSearchPeers(ctx, page)
		return asDisplay(items), total, err
	case ScreenInputs:
		items, total, err := clt.ListInputs(ctx, page)
		return asDisplay(items), total, err
	case ScreenFiredAlerts:
		items, total, err := clt.ListFiredAlerts(ctx, page)
		return asDisplay(items), total, err
	case ScreenForwarders:
		items, total, err := clt.ListForwarders(ctx, page)
		return asDisplay(items), total, err
	case ScreenLookups:
		items, total, err := clt.ListLookupTables(ctx, page)
		return asDisplay(items), total, err
	case ScreenLicense:
		pools, total, err := clt.ListLicensePools(ctx, page)
		return asDisplay(pools), total, err
	}
	return nil, 0, nil
}

// asDisplay lifts a typed page into the display interface. Display
// methods hang off pointer receivers, hence the two-parameter form.
func asDisplay[T any, PT interface {
	output.ResourceDisplay
	*T
}](items []T) []output.ResourceDisplay {
	out := make([]output.ResourceDisplay, 0, len(items))
	for i := range items {
		out = append(out, PT(&items[i]))
	}
	return out
}

func (d *Dispatcher) loadList(ctx context.Context, effect LoadList) {
	d.send(ctx, Loading{On: true})
	defer d.send(ctx, Loading{On: false})
	clt := d.client()

	switch effect.Screen {
	case ScreenHealth:
		report, err := clt.GetHealthReport(ctx)
		if err != nil {
			d.notifyError(ctx, err)
			return
		}
		d.send(ctx, HealthLoaded{Report: report})
		return
	case ScreenOverview:
		info, err := clt.GetServerInfo(ctx)
		if err != nil {
			d.notifyError(ctx, err)
			return
		}
		// License usage feeds the sparkline; its absence is not fatal.
		usage, err := clt.GetLicenseUsage(ctx)
		if err != nil {
			usage = nil
		}
		d.send(ctx, OverviewLoaded{Info: info, License: usage})
		return
	case ScreenInternalLogs:
		results, err := clt.InternalLogs(ctx, "", client.Page{Offset: effect.Offset})
		if err != nil {
			d.notifyError(ctx, err)
			return
		}
		if effect.Offset > 0 {
			d.send(ctx, MoreSearchResultsLoaded{Results: results})
		} else {
			d.send(ctx, SearchResultsLoaded{Results: results})
		}
		return
	}

	items, total, err := fetchPage(ctx, clt, effect.Screen, client.Page{Offset: effect.Offset})
	if err != nil {
		d.notifyError(ctx, err)
		return
	}
	if items == nil && total == 0 {
		// Screen without a list fetch (Search, Settings, ...).
		return
	}
	if effect.Offset > 0 {
		d.send(ctx, MoreResourceLoaded{Screen: effect.Screen, Items: items, Offset: effect.Offset, Total: total})
	} else {
		d.send(ctx, ResourceLoaded{Screen: effect.Screen, Items: items, Offset: 0, Total: total})
	}
}

func (d *Dispatcher) runSearch(ctx context.Context, effect RunSearch) {
	d.send(ctx, Loading{On: true})
	defer d.send(ctx, Loading{On: false})

	results, sid, err := d.client().SearchWithProgress(ctx, effect.Params, func(fraction float64) {
		// Progress is advisory; dropping one under backpressure is fine.
		d.cfg.Queue.TrySend(Progress{Fraction: fraction})
	})
	if err != nil {
		if ctx.Err() != nil {
			d.send(context.WithoutCancel(ctx), Cancelled{})
			return
		}
		d.notifyError(ctx, err)
		return
	}
	d.send(ctx, SearchResultsLoaded{Results: results, SID: sid})
}

func (d *Dispatcher) loadMoreResults(ctx context.Context, effect LoadMoreResults) {
	results, err := d.client().GetSearchResults(ctx, effect.SID, client.Page{Offset: effect.Offset})
	if err != nil {
		d.notifyError(ctx, err)
		return
	}
	d.send(ctx, MoreSearchResultsLoaded{Results: results})
}

func (d *Dispatcher) validate(ctx context.Context, effect ValidateQuery) {
	d.mu.Lock()
	d.validateGen++
	gen := d.validateGen
	d.mu.Unlock()

	// Debounce: wait out the typing burst, then check we are still the
	// newest request.
	select {
	case <-d.cfg.Clock.After(defaults.ValidateDebounce):
	case <-ctx.Done():
		return
	}
	d.mu.Lock()
	stale := gen != d.validateGen
	d.mu.Unlock()
	if stale {
		return
	}

	messages, err := d.client().ValidateQuery(ctx, effect.Query)
	if err != nil {
		// Validation is advisory; a transport error is not a toast.
		return
	}
	d.send(ctx, ValidateResult{Query: effect.Query, Messages: messages})
}

func (d *Dispatcher) switchProfile(ctx context.Context, effect SwitchProfile) {
	if d.cfg.Builder == nil {
		d.send(ctx, ProfileSwitched{Name: effect.Name, Err: trace.NotImplemented("profile switching is not configured")})
		return
	}
	d.send(ctx, Loading{On: true})
	defer d.send(ctx, Loading{On: false})

	clt, err := d.cfg.Builder(ctx, effect.Name)
	if err != nil {
		d.send(ctx, ProfileSwitched{Name: effect.Name, Err: err})
		return
	}
	d.mu.Lock()
	d.clt = clt
	d.mu.Unlock()
	d.send(ctx, ProfileSwitched{Name: effect.Name})
}

func (d *Dispatcher) deleteResource(ctx context.Context, effect DeleteResource) {
	clt := d.client()
	var err error
	switch effect.Screen {
	case ScreenIndexes:
		err = clt.DeleteIndex(ctx, effect.Name)
	case ScreenUsers:
		err = clt.DeleteUser(ctx, effect.Name)
	case ScreenRoles:
		err = clt.DeleteRole(ctx, effect.Name)
	case ScreenMacros:
		err = clt.DeleteMacro(ctx, effect.Name)
	case ScreenSavedSearches:
		err = clt.DeleteSavedSearch(ctx, effect.Name)
	case ScreenLookups:
		err = clt.DeleteLookupTable(ctx, effect.Name)
	case ScreenJobs:
		err = clt.DeleteJob(ctx, effect.Name)
	case ScreenApps:
		err = clt.RemoveApp(ctx, effect.Name)
	default:
		err = trace.BadParameter("cannot delete from the %v screen", effect.Screen)
	}
	if err != nil {
		d.notifyError(ctx, err)
		return
	}
	d.send(ctx, Notify{Level: NotifySuccess, Text: "deleted " + effect.Name})
	// Mutations refresh the list from the top.
	d.loadList(ctx, LoadList{Screen: effect.Screen})
}

func (d *Dispatcher) saveState(ctx context.Context, effect SaveState) {
	if d.cfg.Manager == nil {
		return
	}
	err := d.cfg.Manager.Update(func(state *config.State) {
		state.Onboarding = effect.Onboarding
	})
	if err != nil {
		d.notifyError(ctx, err)
	}
}
