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

package output

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/asciitable"
)

// Dataset is one renderable slice of records. Records drive the table,
// CSV and XML paths; Native holds the original typed values for JSON and
// NDJSON, which use the records' own encoding. Both slices are index
// aligned.
type Dataset struct {
	Records []ResourceDisplay
	Native  []any
	// Detailed adds the long tail of columns in table/CSV/XML.
	Detailed bool
	// Page renders as a table footer; machine formats ignore it.
	Page *Pagination
}

// Render writes the dataset in the chosen format.
func Render(w io.Writer, format Format, d Dataset) error {
	switch format {
	case FormatTable:
		return trace.Wrap(renderTable(w, d))
	case FormatJSON:
		return trace.Wrap(renderJSON(w, d))
	case FormatNDJSON:
		return trace.Wrap(renderNDJSON(w, d.Native))
	case FormatCSV:
		return trace.Wrap(renderCSV(w, d, true))
	case FormatXML:
		return trace.Wrap(renderXML(w, d))
	default:
		return trace.BadParameter("unknown output format %v", format)
	}
}

func renderTable(w io.Writer, d Dataset) error {
	if len(d.Records) == 0 {
		if d.Page != nil {
			_, err := fmt.Fprintln(w, "No results.")
			return trace.Wrap(err)
		}
		return nil
	}
	headers := TableHeaders(d.Records[0].Headers(d.Detailed))
	rows := make([][]string, 0, len(d.Records))
	for _, r := range d.Records {
		rows = append(rows, r.Row(d.Detailed))
	}
	t := asciitable.MakeTable(headers, rows...)
	if d.Page != nil {
		t.SetFooter(d.Page.Footer())
	}
	_, err := w.Write(t.AsBuffer().Bytes())
	return trace.Wrap(err)
}

// Footer renders the table pagination line: "Showing X-Y of Z" when the
// total is known, "Showing X-Y" otherwise.
func (p Pagination) Footer() string {
	if p.Count == 0 {
		return "Showing 0 results"
	}
	first := p.Offset + 1
	last := p.Offset + p.Count
	if p.Total >= 0 {
		return fmt.Sprintf("Showing %d-%d of %d", first, last, p.Total)
	}
	return fmt.Sprintf("Showing %d-%d", first, last)
}

func renderJSON(w io.Writer, d Dataset) error {
	native := d.Native
	if native == nil {
		native = []any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return trace.Wrap(enc.Encode(native))
}

func renderNDJSON(w io.Writer, native []any) error {
	enc := json.NewEncoder(w)
	for _, record := range native {
		if err := enc.Encode(record); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

func renderCSV(w io.Writer, d Dataset, withHeader bool) error {
	if len(d.Records) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(CSVHeaders(d.Records[0].Headers(d.Detailed))); err != nil {
			return trace.Wrap(err)
		}
	}
	for _, r := range d.Records {
		if err := cw.Write(r.Row(d.Detailed)); err != nil {
			return trace.Wrap(err)
		}
	}
	cw.Flush()
	return trace.Wrap(cw.Error())
}

const (
	xmlHeader   = xml.Header
	xmlRootOpen = "<results>\n"
	xmlRootEnd  = "</results>\n"
)

func renderXML(w io.Writer, d Dataset) error {
	if _, err := io.WriteString(w, xmlHeader+xmlRootOpen); err != nil {
		return trace.Wrap(err)
	}
	if err := writeXMLRecords(w, d.Records); err != nil {
		return trace.Wrap(err)
	}
	_, err := io.WriteString(w, xmlRootEnd)
	return trace.Wrap(err)
}

func writeXMLRecords(w io.Writer, records []ResourceDisplay) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "  <%s>\n", r.XMLElement()); err != nil {
			return trace.Wrap(err)
		}
		for _, f := range r.XMLFields() {
			if f.Value == nil {
				if _, err := fmt.Fprintf(w, "    <%s/>\n", f.Name); err != nil {
					return trace.Wrap(err)
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "    <%s>%s</%s>\n", f.Name, xmlEscape(*f.Value), f.Name); err != nil {
				return trace.Wrap(err)
			}
		}
		if _, err := fmt.Fprintf(w, "  </%s>\n", r.XMLElement()); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// rowRecord adapts one dynamic search-result row to ResourceDisplay,
// preserving the server-reported field order.
type rowRecord struct {
	fields []string
	row    map[string]string
}

// Headers implements ResourceDisplay.
func (r rowRecord) Headers(bool) []string { return r.fields }

// Row implements ResourceDisplay.
func (r rowRecord) Row(bool) []string {
	cells := make([]string, len(r.fields))
	for i, f := range r.fields {
		cells[i] = r.row[f]
	}
	return cells
}

// XMLElement implements ResourceDisplay.
func (r rowRecord) XMLElement() string { return "result" }

// XMLFields implements ResourceDisplay.
func (r rowRecord) XMLFields() []Field {
	fields := make([]Field, len(r.fields))
	for i, name := range r.fields {
		value := r.row[name]
		fields[i] = Field{Name: name}
		if value != "" {
			v := value
			fields[i].Value = &v
		}
	}
	return fields
}

// DynamicDataset builds a Dataset from search-result rows, whose columns
// are only known at runtime.
func DynamicDataset(fields []string, rows []map[string]string) Dataset {
	d := Dataset{
		Records: make([]ResourceDisplay, 0, len(rows)),
		Native:  make([]any, 0, len(rows)),
	}
	for _, row := range rows {
		d.Records = append(d.Records, rowRecord{fields: fields, row: row})
		d.Native = append(d.Native, row)
	}
	return d
}
