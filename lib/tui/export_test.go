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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/output"
)

func TestExportFormSeedsFilename(t *testing.T) {
	t.Parallel()

	form := NewExportForm(ExportIndexes)
	require.Equal(t, "indexes.json", form.Filename)

	form.Toggle()
	require.Equal(t, "indexes.csv", form.Filename)
	require.Equal(t, output.FormatCSV, form.Format())

	// A user-entered name survives format toggling.
	form.SetFilename("mine.out")
	form.Toggle()
	require.Equal(t, "mine.out", form.Filename)
	require.Equal(t, output.FormatJSON, form.Format())
}

func TestExportTargetFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, ExportSearchResults, ExportTargetFor(ScreenSearch))
	require.Equal(t, ExportSearchResults, ExportTargetFor(ScreenInternalLogs))
	require.Equal(t, ExportUsers, ExportTargetFor(ScreenUsers))
	require.Equal(t, ExportTarget("saved_searches"), ExportTargetFor(ScreenSavedSearches))
}

func TestWriteExportJSONAndCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := output.Dataset{
		Records: items("main", "audit"),
		Native:  []any{map[string]string{"name": "main"}, map[string]string{"name": "audit"}},
	}

	form := NewExportForm(ExportIndexes)
	form.SetFilename(filepath.Join(dir, "out.json"))
	require.NoError(t, WriteExport(form, d))

	raw, err := os.ReadFile(form.Filename)
	require.NoError(t, err)
	var parsed []map[string]string
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Len(t, parsed, 2)

	form.Toggle()
	form.SetFilename(filepath.Join(dir, "out.csv"))
	require.NoError(t, WriteExport(form, d))

	raw, err = os.ReadFile(form.Filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Equal(t, "name", lines[0])
	require.Len(t, lines, 3)
}

func TestExportSnapshotFromSearchScreen(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	app.Screen = ScreenSearch

	_, err := app.exportDataset()
	require.Error(t, err, "no results yet")

	app.Search.Results = &client.SearchResults{
		Fields: []string{"host", "count"},
		Rows:   []map[string]string{{"host": "h1", "count": "3"}},
	}
	d, err := app.exportDataset()
	require.NoError(t, err)
	require.Len(t, d.Records, 1)
	require.Equal(t, []string{"h1", "3"}, d.Records[0].Row(false))
}
