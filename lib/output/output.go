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

// Package output renders typed resource slices for humans (aligned
// tables) and machines (JSON, NDJSON, CSV, XML). Machine formats never
// carry pagination metadata; that would corrupt downstream pipelines.
package output

import (
	"strings"

	"github.com/gravitational/trace"
)

// Format selects a renderer.
type Format int

const (
	// FormatTable is the human-readable aligned table.
	FormatTable Format = iota
	// FormatJSON is a pretty-printed JSON array.
	FormatJSON
	// FormatNDJSON is one JSON object per line, no array wrapper.
	FormatNDJSON
	// FormatCSV is RFC 4180 CSV with a header row.
	FormatCSV
	// FormatXML is an XML document with a typed element tree.
	FormatXML
)

// String returns the canonical format name.
func (f Format) String() string {
	switch f {
	case FormatTable:
		return "table"
	case FormatJSON:
		return "json"
	case FormatNDJSON:
		return "ndjson"
	case FormatCSV:
		return "csv"
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// validFormats is what ParseFormat reports on failure.
const validFormats = "table, json, jsonl, ndjson, csv, xml"

// ParseFormat parses a format identifier case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatNDJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xml":
		return FormatXML, nil
	default:
		return 0, trace.BadParameter("unknown output format %q, valid formats: %s", name, validFormats)
	}
}

// Field is one XML element of a rendered resource. A nil value renders
// as an empty element, never a misleading default.
type Field struct {
	Name  string
	Value *string
}

// ResourceDisplay is the single interface every domain record implements
// to gain automatic CSV, table and XML support. JSON uses the record's
// native encoding instead.
type ResourceDisplay interface {
	// Headers returns canonical lower_snake column names; detailed adds
	// the long tail of columns.
	Headers(detailed bool) []string
	// Row returns the cell values matching Headers. Nil/absent server
	// fields come back as empty strings.
	Row(detailed bool) []string
	// XMLElement is the element name wrapping one record.
	XMLElement() string
	// XMLFields lists the child elements of one record.
	XMLFields() []Field
}

// TableHeaders maps canonical names to the table casing convention.
func TableHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToUpper(strings.ReplaceAll(h, "_", " "))
	}
	return out
}

// CSVHeaders maps canonical names to the CSV casing convention, which
// keeps lower_snake as-is for machine friendliness.
func CSVHeaders(headers []string) []string {
	out := make([]string, len(headers))
	copy(out, headers)
	return out
}

// Pagination describes the slice being rendered. Table mode renders it
// as a footer; machine formats ignore it entirely.
type Pagination struct {
	// Offset is the zero-based index of the first rendered record.
	Offset int
	// Count is the number of rendered records.
	Count int
	// Total is the server-reported total; negative when unknown.
	Total int
}
