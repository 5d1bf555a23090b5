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

package config

import (
	"os"
	"strings"

	"github.com/gravitational/trace"
	"github.com/joho/godotenv"
)

// LoadDotenv loads a .env file into the process environment unless
// DOTENV_DISABLED is set. A missing file is fine; a malformed file is an
// error. The returned error never includes file content: .env files hold
// credentials and the parser's own message can echo the offending line.
func LoadDotenv(path string) error {
	if disabled := strings.ToLower(strings.TrimSpace(os.Getenv(EnvDotenvOff))); disabled == "1" || disabled == "true" {
		return nil
	}
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return trace.ConvertSystemError(err)
	}
	if err := godotenv.Load(path); err != nil {
		return trace.BadParameter(
			"failed to parse %s: fix the file or set %s=1 to skip loading it", path, EnvDotenvOff)
	}
	return nil
}
