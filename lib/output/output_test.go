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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Note  string `json:"note,omitempty"`
}

func (r fakeRecord) Headers(detailed bool) []string {
	if detailed {
		return []string{"name", "event_count", "note"}
	}
	return []string{"name", "event_count"}
}

func (r fakeRecord) Row(detailed bool) []string {
	row := []string{r.Name, "0"}
	if r.Count > 0 {
		row[1] = "42"
	}
	if detailed {
		row = append(row, r.Note)
	}
	return row
}

func (r fakeRecord) XMLElement() string { return "index" }

func (r fakeRecord) XMLFields() []Field {
	fields := []Field{{Name: "name", Value: &r.Name}}
	if r.Note != "" {
		fields = append(fields, Field{Name: "note", Value: &r.Note})
	} else {
		fields = append(fields, Field{Name: "note"})
	}
	return fields
}

func fakeDataset(records ...fakeRecord) Dataset {
	d := Dataset{}
	for _, r := range records {
		d.Records = append(d.Records, r)
		d.Native = append(d.Native, r)
	}
	return d
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Format{
		"json":   FormatJSON,
		"JSON":   FormatJSON,
		"jsonl":  FormatNDJSON,
		"ndjson": FormatNDJSON,
		" csv ":  FormatCSV,
		"table":  FormatTable,
		"xml":    FormatXML,
		"":       FormatTable,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, "format %q", name)
		require.Equal(t, want, got, "format %q", name)
	}

	_, err := ParseFormat("yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ndjson")
}

func TestNDJSONStructure(t *testing.T) {
	t.Parallel()

	records := []fakeRecord{
		{Name: "main", Count: 42},
		{Name: "_internal"},
		{Name: "audit", Note: "x"},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatNDJSON, fakeDataset(records...)))

	out := strings.TrimRight(buf.String(), "\n")
	require.False(t, strings.HasPrefix(out, "["))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, len(records))
	for _, line := range lines {
		require.NotEmpty(t, line)
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj))
	}
}

func TestJSONIsAnArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, fakeDataset(fakeRecord{Name: "main"})))

	var parsed []fakeRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	require.Equal(t, "main", parsed[0].Name)
}

func TestMachineFormatsCarryNoPagination(t *testing.T) {
	t.Parallel()

	d := fakeDataset(fakeRecord{Name: "main", Count: 42})
	d.Page = &Pagination{Offset: 0, Count: 1, Total: 900}

	for _, format := range []Format{FormatJSON, FormatNDJSON, FormatCSV, FormatXML} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, format, d))
		require.NotContains(t, buf.String(), "Showing", "format %v", format)
		require.NotContains(t, buf.String(), "900", "format %v", format)
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, d))
	require.Contains(t, buf.String(), "Showing 1-1 of 900")
}

func TestPaginationFooter(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Showing 11-40 of 900", Pagination{Offset: 10, Count: 30, Total: 900}.Footer())
	require.Equal(t, "Showing 1-30", Pagination{Count: 30, Total: -1}.Footer())
	require.Equal(t, "Showing 0 results", Pagination{Total: -1}.Footer())
}

func TestTableCasing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, fakeDataset(fakeRecord{Name: "main", Count: 42})))
	require.Contains(t, buf.String(), "EVENT COUNT")

	buf.Reset()
	require.NoError(t, Render(&buf, FormatCSV, fakeDataset(fakeRecord{Name: "main", Count: 42})))
	require.Contains(t, buf.String(), "event_count")
	require.NotContains(t, buf.String(), "EVENT COUNT")
}

func TestXMLEscaping(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatXML, fakeDataset(fakeRecord{Name: `a<b>&"c"`})))

	out := buf.String()
	require.Contains(t, out, "<?xml")
	require.Contains(t, out, "<results>")
	require.Contains(t, out, "a&lt;b&gt;&amp;")
	require.Contains(t, out, "<note/>")
	require.Contains(t, out, "</results>")
}

func TestStreamingHeaderDiscipline(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatCSV, FormatTable} {
		var buf bytes.Buffer
		s := NewStream(&buf, format, false)

		// Empty batches must produce no output at all, headers included.
		require.NoError(t, s.WriteBatch(Dataset{}))
		require.Empty(t, buf.String())

		require.NoError(t, s.WriteBatch(fakeDataset(fakeRecord{Name: "a"})))
		require.NoError(t, s.WriteBatch(fakeDataset(fakeRecord{Name: "b"}, fakeRecord{Name: "c"})))
		require.NoError(t, s.Close())

		header := "name"
		if format == FormatTable {
			header = "NAME"
		}
		require.Equal(t, 1, strings.Count(buf.String(), header), "format %v", format)
		require.Equal(t, 4, strings.Count(buf.String(), "\n"), "format %v", format)
	}
}

func TestStreamingNativeOnlyBatchIsSkipped(t *testing.T) {
	t.Parallel()

	// A batch carrying native values but no display records has nothing
	// the record-based formats can render; it must be a silent no-op.
	for _, format := range []Format{FormatCSV, FormatTable, FormatXML} {
		var buf bytes.Buffer
		s := NewStream(&buf, format, false)
		require.NoError(t, s.WriteBatch(Dataset{Native: []any{fakeRecord{Name: "a"}}}))
		require.NoError(t, s.Close())
		require.Empty(t, buf.String(), "format %v", format)
	}
}

func TestStreamingJSONDegradesToNDJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewStream(&buf, FormatJSON, false)
	require.NoError(t, s.WriteBatch(fakeDataset(fakeRecord{Name: "a"})))
	require.NoError(t, s.WriteBatch(fakeDataset(fakeRecord{Name: "b"})))
	require.NoError(t, s.Close())

	out := strings.TrimRight(buf.String(), "\n")
	require.False(t, strings.HasPrefix(out, "["))
	require.Len(t, strings.Split(out, "\n"), 2)
}

func TestStreamingXMLClosesRoot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewStream(&buf, FormatXML, false)
	require.NoError(t, s.WriteBatch(fakeDataset(fakeRecord{Name: "a"})))
	require.NoError(t, s.Close())
	require.Contains(t, buf.String(), "</results>")

	// A stream that never sees a record emits nothing, not even tags.
	var empty bytes.Buffer
	s = NewStream(&empty, FormatXML, false)
	require.NoError(t, s.Close())
	require.Empty(t, empty.String())
}

func TestDynamicDataset(t *testing.T) {
	t.Parallel()

	fields := []string{"_time", "host", "count"}
	rows := []map[string]string{
		{"_time": "t1", "host": "h1", "count": "3"},
		{"_time": "t2", "host": "h2"},
	}
	d := DynamicDataset(fields, rows)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatCSV, d))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "_time,host,count", lines[0])
	require.Equal(t, "t1,h1,3", lines[1])
	require.Equal(t, "t2,h2,", lines[2])
}
