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
	"os"
	"strings"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/output"
)

// ExportTarget names the dataset being exported.
type ExportTarget string

const (
	ExportSearchResults ExportTarget = "search_results"
	ExportIndexes       ExportTarget = "indexes"
	ExportJobs          ExportTarget = "jobs"
	ExportUsers         ExportTarget = "users"
	ExportApps          ExportTarget = "apps"
	ExportGeneric       ExportTarget = "export"
)

// ExportTargetFor maps a screen to its dataset name.
func ExportTargetFor(s Screen) ExportTarget {
	switch s {
	case ScreenSearch, ScreenInternalLogs:
		return ExportSearchResults
	case ScreenIndexes:
		return ExportIndexes
	case ScreenJobs:
		return ExportJobs
	case ScreenUsers:
		return ExportUsers
	case ScreenApps:
		return ExportApps
	default:
		return ExportTarget(strings.ReplaceAll(strings.ToLower(s.String()), " ", "_"))
	}
}

// ExportForm is the export popup's state. Tab toggles the format, which
// re-seeds the filename extension unless the user already edited it.
type ExportForm struct {
	Target   ExportTarget
	Filename string
	CSV      bool
	edited   bool
}

// NewExportForm seeds a form with <target>.json.
func NewExportForm(target ExportTarget) ExportForm {
	f := ExportForm{Target: target}
	f.Filename = f.seed()
	return f
}

func (f *ExportForm) seed() string {
	ext := ".json"
	if f.CSV {
		ext = ".csv"
	}
	return string(f.Target) + ext
}

// Toggle flips JSON/CSV.
func (f *ExportForm) Toggle() {
	f.CSV = !f.CSV
	if !f.edited {
		f.Filename = f.seed()
	}
}

// SetFilename records a user-entered name; toggling no longer reseeds.
func (f *ExportForm) SetFilename(name string) {
	f.Filename = name
	f.edited = true
}

// Format returns the selected output format.
func (f ExportForm) Format() output.Format {
	if f.CSV {
		return output.FormatCSV
	}
	return output.FormatJSON
}

// WriteExport renders the dataset to the form's file.
func WriteExport(form ExportForm, d output.Dataset) error {
	if form.Filename == "" {
		return trace.BadParameter("missing export filename")
	}
	f, err := os.OpenFile(form.Filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer f.Close()
	if err := output.Render(f, form.Format(), d); err != nil {
		return trace.Wrap(err)
	}
	return trace.ConvertSystemError(f.Close())
}
