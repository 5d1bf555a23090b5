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
	"io"

	"github.com/gravitational/trace"
)

// Stream renders batches incrementally for tailing output. Header
// material (table/CSV header, XML declaration and root) is emitted
// exactly once, on the first non-empty batch; empty batches produce no
// output at all. JSON streams degrade to NDJSON unconditionally: a
// pretty-printed array cannot be appended to.
type Stream struct {
	w        io.Writer
	format   Format
	detailed bool

	started bool
}

// NewStream builds a streaming renderer.
func NewStream(w io.Writer, format Format, detailed bool) *Stream {
	if format == FormatJSON {
		format = FormatNDJSON
	}
	return &Stream{w: w, format: format, detailed: detailed}
}

// WriteBatch renders one batch of records. NDJSON reads d.Native, every
// other format reads d.Records; a batch empty on the side the format
// consumes produces no output and does not start the stream.
func (s *Stream) WriteBatch(d Dataset) error {
	if s.format == FormatNDJSON {
		if len(d.Native) == 0 {
			return nil
		}
	} else if len(d.Records) == 0 {
		return nil
	}
	d.Detailed = s.detailed
	first := !s.started
	s.started = true

	switch s.format {
	case FormatNDJSON:
		return trace.Wrap(renderNDJSON(s.w, d.Native))
	case FormatCSV:
		return trace.Wrap(renderCSV(s.w, d, first))
	case FormatTable:
		return trace.Wrap(s.writeTableBatch(d, first))
	case FormatXML:
		if first {
			if _, err := io.WriteString(s.w, xmlHeader+xmlRootOpen); err != nil {
				return trace.Wrap(err)
			}
		}
		return trace.Wrap(writeXMLRecords(s.w, d.Records))
	default:
		return trace.BadParameter("unknown output format %v", s.format)
	}
}

// writeTableBatch emits fixed-width rows so batches line up without
// buffering the whole stream.
func (s *Stream) writeTableBatch(d Dataset, first bool) error {
	headers := d.Records[0].Headers(s.detailed)
	if first {
		if err := s.writeTabbed(TableHeaders(headers)); err != nil {
			return trace.Wrap(err)
		}
	}
	for _, r := range d.Records {
		if err := s.writeTabbed(r.Row(s.detailed)); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

func (s *Stream) writeTabbed(cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if _, err := io.WriteString(s.w, "\t"); err != nil {
				return trace.Wrap(err)
			}
		}
		if _, err := io.WriteString(s.w, cell); err != nil {
			return trace.Wrap(err)
		}
	}
	_, err := io.WriteString(s.w, "\n")
	return trace.Wrap(err)
}

// Close terminates the stream, writing the XML closing tag when the
// stream emitted an opening one. Streams that never saw a record close
// without output.
func (s *Stream) Close() error {
	if s.format == FormatXML && s.started {
		_, err := io.WriteString(s.w, xmlRootEnd)
		return trace.Wrap(err)
	}
	return nil
}
