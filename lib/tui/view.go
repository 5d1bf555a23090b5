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
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/splunkctl/splunkctl/lib/config"
)

var (
	selectedColor = lipgloss.Color("4")

	separator = lipgloss.NewStyle().Faint(true).Render(" • ")

	titleStyle = lipgloss.NewStyle().Bold(true)

	toastStyles = map[NotifyLevel]lipgloss.Style{
		NotifyInfo:    lipgloss.NewStyle().Faint(true),
		NotifySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		NotifyError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// headerView renders the tab bar. Only a window of screens around the
// active one is shown so narrow terminals stay readable.
func headerView(app *App) string {
	const window = 5
	var tabs []string
	for i := -window / 2; i <= window/2; i++ {
		s := Screen((int(app.Screen) + i + int(screenCount)) % int(screenCount))
		style := lipgloss.NewStyle().Faint(s != app.Screen)
		if s == app.Screen {
			style = style.Foreground(selectedColor)
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	line := strings.Join(tabs, separator)
	if app.Profile != "" {
		line += separator + lipgloss.NewStyle().Faint(true).Render("["+app.Profile+"]")
	}
	return line + "\n" + strings.Repeat("‾", max(app.Width, 1))
}

// contentView renders the active screen.
func contentView(app *App) string {
	switch app.Screen {
	case ScreenSearch, ScreenInternalLogs:
		return searchView(app)
	case ScreenHealth:
		return healthView(app)
	case ScreenOverview:
		return overviewView(app)
	case ScreenMultiInstance:
		return multiView(app)
	default:
		return listView(app)
	}
}

func listView(app *App) string {
	l, ok := app.Lists[app.Screen]
	if !ok || len(l.Items) == 0 {
		if app.Loading {
			return "Loading..."
		}
		return "No results."
	}

	var b strings.Builder
	headers := l.Items[0].Headers(false)
	b.WriteString(titleStyle.Render(strings.ToUpper(strings.Join(headers, "  "))))
	b.WriteByte('\n')
	for i, item := range l.Items {
		row := strings.Join(item.Row(false), "  ")
		if i == l.Cursor {
			row = lipgloss.NewStyle().Reverse(true).Render(row)
		}
		b.WriteString(row)
		b.WriteByte('\n')
	}
	if l.Total >= 0 {
		fmt.Fprintf(&b, "\n%d of %d", len(l.Items), l.Total)
	}
	return b.String()
}

func searchView(app *App) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SPL> %s\n", app.Search.Query)
	for _, msg := range app.Search.Validation {
		b.WriteString(toastStyles[NotifyError].Render("  ! "+msg) + "\n")
	}
	if app.Search.Running {
		fmt.Fprintf(&b, "running... %3.0f%%\n", app.Search.Progress*100)
	}
	if r := app.Search.Results; r != nil {
		b.WriteString(titleStyle.Render(strings.Join(r.Fields, "  ")) + "\n")
		for _, row := range r.Rows {
			cells := make([]string, 0, len(r.Fields))
			for _, f := range r.Fields {
				cells = append(cells, row[f])
			}
			b.WriteString(strings.Join(cells, "  ") + "\n")
		}
		if r.Total >= 0 {
			fmt.Fprintf(&b, "\n%s of %s results",
				humanize.Comma(int64(len(r.Rows))), humanize.Comma(int64(r.Total)))
		}
	}
	return b.String()
}

func healthView(app *App) string {
	if app.Health == nil {
		return "Loading..."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "splunkd: %s\n\n", app.Health.Health)
	for _, f := range app.Health.Features {
		style := lipgloss.NewStyle()
		switch f.Health {
		case "red":
			style = toastStyles[NotifyError]
		case "yellow":
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		}
		b.WriteString(style.Render(fmt.Sprintf("%-50s %s", f.Name, f.Health)) + "\n")
	}
	return b.String()
}

func overviewView(app *App) string {
	var b strings.Builder
	if app.Info != nil {
		if app.Info.ServerName != nil {
			fmt.Fprintf(&b, "Server:   %s\n", *app.Info.ServerName)
		}
		if app.Info.Version != nil {
			fmt.Fprintf(&b, "Version:  %s\n", *app.Info.Version)
		}
	}
	if len(app.License) > 0 {
		used := make([]float64, 0, len(app.License))
		var total uint64
		for _, u := range app.License {
			if u.UsedBytes != nil {
				used = append(used, float64(*u.UsedBytes))
				total += uint64(*u.UsedBytes)
			}
		}
		fmt.Fprintf(&b, "License:  %s used\n", humanize.Bytes(total))
		if len(used) >= 2 {
			b.WriteString(asciigraph.Plot(used,
				asciigraph.Height(5),
				asciigraph.Width(max(app.Width-15, 10)),
			))
			b.WriteByte('\n')
		}
	}
	if b.Len() == 0 {
		return "Loading..."
	}
	return b.String()
}

func multiView(app *App) string {
	if app.Multi == nil {
		return "No aggregation loaded. Press r to fetch all profiles."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Aggregated at %s\n\n", app.Multi.Timestamp)
	for _, p := range app.Multi.Profiles {
		fmt.Fprintf(&b, "%s (%s)\n", titleStyle.Render(p.Profile), p.BaseURL)
		if p.Error != "" {
			b.WriteString(toastStyles[NotifyError].Render("  "+p.Error) + "\n")
			continue
		}
		for _, s := range p.Summaries {
			if s.Error != "" {
				fmt.Fprintf(&b, "  %-16s %s\n", s.Resource, toastStyles[NotifyError].Render(s.Error))
				continue
			}
			detail := s.Detail
			if detail == "" {
				detail = humanize.Comma(int64(s.Count))
			}
			fmt.Fprintf(&b, "  %-16s %s\n", s.Resource, detail)
		}
	}
	return b.String()
}

// popupView overlays the open dialog.
func popupView(p *Popup) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title) + "\n\n")
	switch p.Kind {
	case PopupExport:
		format := "JSON"
		if p.Export.CSV {
			format = "CSV"
		}
		fmt.Fprintf(&b, "File:   %s\nFormat: %s (tab to toggle)\n\nenter to export, esc to cancel", p.Export.Filename, format)
	case PopupProfileSelector:
		for i, choice := range p.Choices {
			cursor := "  "
			if i == p.Cursor {
				cursor = "> "
			}
			b.WriteString(cursor + choice + "\n")
		}
	default:
		for i := p.Scroll; i < len(p.Lines); i++ {
			b.WriteString(p.Lines[i] + "\n")
		}
	}
	return popupStyle.Render(b.String())
}

// onboardingView renders the checklist while it is visible.
func onboardingView(app *App) string {
	if !app.Onboarding.Visible() {
		return ""
	}
	items := []struct {
		m    config.Milestone
		text string
	}{
		{config.MilestoneProfileReady, "Configure a profile"},
		{config.MilestoneConnectionVerified, "Connect to splunkd"},
		{config.MilestoneFirstSearchRun, "Run your first search"},
		{config.MilestoneNavigationCycle, "Visit every screen"},
		{config.MilestoneHelpOpened, "Open help with ?"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Getting started") + "\n")
	for _, item := range items {
		mark := "[ ]"
		if app.Onboarding.Completed&item.m != 0 {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, item.text)
	}
	return popupStyle.Render(b.String())
}

func toastView(app *App) string {
	var lines []string
	for _, toast := range app.Toasts {
		lines = append(lines, toastStyles[toast.Level].Render(toast.Text))
	}
	return strings.Join(lines, "\n")
}

func helpLines() []string {
	return []string{
		"tab / shift+tab   cycle screens",
		"up / down         move selection",
		"enter             run search / confirm",
		"n                 load next page",
		"r                 refresh screen",
		"e                 export (json/csv)",
		"p                 switch profile",
		"?                 toggle this help",
		"q                 quit",
	}
}
