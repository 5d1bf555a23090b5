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

// splunktop is the interactive terminal dashboard for Splunk Enterprise.
// It shares profiles, configuration and the REST client with splunkctl.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
	"github.com/splunkctl/splunkctl/lib/tui"
	"github.com/splunkctl/splunkctl/tool/splunkctl/common"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if trace.Unwrap(err) == context.Canceled {
			os.Exit(common.ExitCancelled)
		}
		fmt.Fprintln(os.Stderr, trace.UserMessage(err))
		os.Exit(common.ExitCode(err))
	}
}

func run(args []string) error {
	app := kingpin.New("splunktop", "Interactive terminal dashboard for Splunk Enterprise.")
	app.HelpFlag.Short('h')
	app.Version(common.Version)

	var (
		profile    string
		baseURL    string
		username   string
		password   string
		apiToken   string
		skipVerify bool
	)
	app.Flag("profile", "Named connection profile.").Short('p').StringVar(&profile)
	app.Flag("base-url", "Splunk management URL, e.g. https://host:8089.").StringVar(&baseURL)
	app.Flag("username", "Username for session authentication.").StringVar(&username)
	app.Flag("password", "Password for session authentication.").StringVar(&password)
	app.Flag("api-token", "Splunk API token.").StringVar(&apiToken)
	app.Flag("skip-verify", "Skip TLS certificate verification.").BoolVar(&skipVerify)

	if _, err := app.Parse(args); err != nil {
		return trace.Wrap(err)
	}

	// A malformed .env fails hard rather than half-loading credentials.
	if err := config.LoadDotenv(".env"); err != nil {
		return trace.Wrap(err)
	}

	keyring := secret.NewOSKeyring()
	manager, err := newManager(keyring)
	if err != nil {
		return trace.Wrap(err)
	}
	state := manager.State()

	flags := config.Overrides{
		BaseURL:  baseURL,
		Username: username,
		Password: secret.New(password),
		APIToken: secret.New(apiToken),
	}
	if skipVerify {
		skip := true
		flags.SkipVerify = &skip
	}

	resolve := func(profileName string) (*client.Client, error) {
		snap, err := config.Resolve(config.ResolveParams{
			State:       state,
			ProfileName: profileName,
			Keyring:     keyring,
			Flags:       flags,
		})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return common.BuildClient(snap)
	}

	clt, err := resolve(profile)
	if err != nil {
		return trace.Wrap(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The next session counts toward auto-hiding a completed checklist.
	if state.Onboarding.Done() {
		if err := manager.Update(func(s *config.State) {
			s.Onboarding.SessionsSinceComplete++
		}); err != nil {
			return trace.Wrap(err)
		}
	}

	return trace.Wrap(tui.Run(ctx, tui.ModelConfig{
		Dispatcher: &tui.DispatcherConfig{
			Client: clt,
			Builder: func(ctx context.Context, profileName string) (*client.Client, error) {
				return resolve(profileName)
			},
			Manager: manager,
		},
		State: state,
	}))
}

// newManager opens the shared state file, detecting encryption at rest.
func newManager(keyring secret.Store) (*config.Manager, error) {
	path := config.ConfigPath(os.Getenv)
	statePath := path
	if statePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			statePath = filepath.Join(dir, "splunkctl", defaults.ConfigFileName)
		}
	}
	cipher, err := config.DetectCipher(statePath, keyring)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	m, err := config.NewManager(config.ManagerConfig{Path: path, Cipher: cipher})
	return m, trace.Wrap(err)
}
