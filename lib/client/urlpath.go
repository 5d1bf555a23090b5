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
	"net/url"
	"strings"

	"github.com/gravitational/trace"
)

// EncodePathSegment percent-encodes a user-provided path segment for use
// inside a splunkd URL. Everything except ASCII letters, digits, dash,
// dot and underscore is escaped, which covers spaces, quotes, angle
// brackets, braces, pipes, backslash, caret, tilde, percent, question
// mark, hash, plus, comma, semicolon, brackets, all control bytes and -
// critically - the slash, so "a/b" can never walk out of its resource
// path.
func EncodePathSegment(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// isUnreserved reports the characters kept literal. Tilde is escaped
// even though RFC 3986 leaves it unreserved: splunkd object names use
// it rarely enough that the stricter set costs nothing.
func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_':
		return true
	}
	return false
}

// DecodePathSegment reverses EncodePathSegment.
func DecodePathSegment(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", trace.BadParameter("invalid percent-encoding in path segment: %v", err)
	}
	return decoded, nil
}

// joinPath appends pre-encoded segments to a base path. Raw user input
// must go through EncodePathSegment before reaching here; the assembled
// path is handed to url.URL, never concatenated into a request line.
func joinPath(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}
