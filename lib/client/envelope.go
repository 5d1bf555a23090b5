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

package client

import (
	"encoding/json"

	"github.com/gravitational/trace"
)

// entry is one element of Splunk's {entry:[{name, content}]} envelope.
type entry[T any] struct {
	Name    string `json:"name"`
	Content T      `json:"content"`
}

// envelope wraps every services/* list and get response. The resource
// identity lives in entry.name, outside the content object.
type envelope[T any] struct {
	Entry  []entry[T] `json:"entry"`
	Paging struct {
		Total   int `json:"total"`
		PerPage int `json:"perPage"`
		Offset  int `json:"offset"`
	} `json:"paging"`
	Messages []splunkMessage `json:"messages"`
}

// splunkMessage is an element of the messages array splunkd attaches to
// both success and error responses.
type splunkMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// named is implemented by every domain record so the envelope name can
// be merged into the content before it leaves the client. When the
// envelope name and a content-provided name disagree, the envelope wins.
type named interface {
	setName(string)
}

// decodeEntries parses an envelope and merges each entry's name into its
// content record. Returns the records and the paging total.
func decodeEntries[T any, PT interface {
	*T
	named
}](data []byte) ([]T, int, error) {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, trace.Wrap(err, "parsing splunkd entry envelope")
	}
	out := make([]T, 0, len(env.Entry))
	for _, e := range env.Entry {
		content := e.Content
		PT(&content).setName(e.Name)
		out = append(out, content)
	}
	return out, env.Paging.Total, nil
}

// decodeFirstEntry parses an envelope expected to hold a single resource.
// An empty envelope maps to NotFound.
func decodeFirstEntry[T any, PT interface {
	*T
	named
}](data []byte, what string) (*T, error) {
	entries, _, err := decodeEntries[T, PT](data)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if len(entries) == 0 {
		return nil, trace.NotFound("%s not found", what)
	}
	return &entries[0], nil
}
