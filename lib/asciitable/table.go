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

// Package asciitable implements a simple ASCII table formatter for
// printing tabular values into a text terminal.
package asciitable

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// Column is one table column.
type Column struct {
	Title string
	// MaxCellWidth truncates longer cells with an ellipsis; zero means
	// unlimited.
	MaxCellWidth int
	width        int
}

// Table holds tabular values in rows-and-columns form.
type Table struct {
	columns []Column
	rows    [][]string
	footer  string
}

// MakeTable creates a table with the given column names and optional
// initial rows.
func MakeTable(headers []string, rows ...[]string) Table {
	t := Table{columns: make([]Column, len(headers))}
	for i, h := range headers {
		t.columns[i].Title = h
		t.columns[i].width = len(h)
	}
	for _, row := range rows {
		t.AddRow(row)
	}
	return t
}

// MakeTruncatedTable creates a table whose widest column is squeezed to
// fit the terminal width, truncating its cells with an ellipsis.
func MakeTruncatedTable(headers []string, rows [][]string, truncated string) Table {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	t := MakeTable(headers)
	used := 0
	truncatedIdx := -1
	for i := range t.columns {
		if t.columns[i].Title == truncated {
			truncatedIdx = i
			continue
		}
		widest := len(t.columns[i].Title)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > widest {
				widest = len(row[i])
			}
		}
		used += widest + 2
	}
	if truncatedIdx >= 0 {
		t.columns[truncatedIdx].MaxCellWidth = max(width-used-4, 16)
	}
	for _, row := range rows {
		t.AddRow(row)
	}
	return t
}

// AddColumn appends a column definition.
func (t *Table) AddColumn(c Column) {
	c.width = len(c.Title)
	t.columns = append(t.columns, c)
}

// AddRow appends a row, tracking column widths for the separator line.
func (t *Table) AddRow(row []string) {
	limit := min(len(row), len(t.columns))
	for i := 0; i < limit; i++ {
		cell := t.truncateCell(i, row[i])
		t.columns[i].width = max(len(cell), t.columns[i].width)
	}
	t.rows = append(t.rows, row[:limit])
}

// SetFooter adds a trailing line below the body, e.g. a pagination
// summary. Table output only; machine formats never carry it.
func (t *Table) SetFooter(footer string) {
	t.footer = footer
}

func (t *Table) truncateCell(colIndex int, cell string) string {
	maxWidth := t.columns[colIndex].MaxCellWidth
	if maxWidth == 0 || len(cell) <= maxWidth {
		return cell
	}
	return cell[:maxWidth] + "..."
}

// AsBuffer renders the table.
func (t *Table) AsBuffer() *bytes.Buffer {
	var buffer bytes.Buffer

	writer := tabwriter.NewWriter(&buffer, 5, 0, 1, ' ', 0)
	template := strings.Repeat("%v\t", len(t.columns))

	var titles []any
	var separators []any
	for _, col := range t.columns {
		titles = append(titles, col.Title)
		separators = append(separators, strings.Repeat("-", col.width))
	}
	fmt.Fprintf(writer, template+"\n", titles...)
	fmt.Fprintf(writer, template+"\n", separators...)

	for _, row := range t.rows {
		cells := make([]any, len(row))
		for i := range row {
			cells[i] = t.truncateCell(i, row[i])
		}
		fmt.Fprintf(writer, template+"\n", cells...)
	}
	writer.Flush()

	if t.footer != "" {
		fmt.Fprintln(&buffer)
		fmt.Fprintln(&buffer, t.footer)
	}
	return &buffer
}
