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

package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/diag"
)

// DoctorCommand implements "splunkctl doctor": an offline diagnostic of
// the local setup, optionally probing the configured instance and
// optionally writing a redacted support bundle.
type DoctorCommand struct {
	doctor *kingpin.CmdClause

	probe  bool
	bundle string
}

// Initialize sets up the command.
func (c *DoctorCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.doctor = app.Command("doctor", "Diagnose the local configuration and connectivity.")
	c.doctor.Flag("probe", "Probe the configured instance over the network.").Default("true").BoolVar(&c.probe)
	c.doctor.Flag("bundle", "Write a redacted support bundle zip to this path.").StringVar(&c.bundle)
}

// TryRun executes the command when selected.
func (c *DoctorCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.doctor.FullCommand() {
		return false, nil
	}

	// Resolution and client-build failures become report entries, never
	// early exits; doctor is exactly for broken setups.
	snap, resolveErr := cfg.Snapshot()
	var clt *client.Client
	var buildErr error
	if resolveErr == nil {
		clt, buildErr = BuildClient(snap)
	}

	report := diag.Run(ctx, diag.Params{
		Version:    Version,
		Snapshot:   snap,
		ResolveErr: resolveErr,
		Client:     clt,
		BuildErr:   buildErr,
		Probe:      c.probe,
	})

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return true, trace.Wrap(err)
	}
	fmt.Fprintln(cfg.Stdout, string(data))

	if c.bundle != "" {
		if err := diag.WriteBundle(c.bundle, report); err != nil {
			return true, trace.Wrap(err)
		}
		fmt.Fprintf(cfg.Stderr, "support bundle written to %s\n", c.bundle)
	}

	// A failed check is an actionable result, not a crash; exit 1 so
	// scripts can gate on it.
	for _, check := range report.Checks {
		if check.Status == "failed" {
			return true, trace.BadParameter("doctor found problems, see the report above")
		}
	}
	return true, nil
}
