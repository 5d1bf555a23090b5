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

	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/secret"
	"github.com/splunkctl/splunkctl/lib/utils"
)

// ProfileCommand implements the "splunkctl config" group: the profile
// catalog and encryption at rest.
type ProfileCommand struct {
	add     *kingpin.CmdClause
	list    *kingpin.CmdClause
	remove  *kingpin.CmdClause
	use     *kingpin.CmdClause
	encrypt *kingpin.CmdClause

	name       string
	baseURL    string
	username   string
	password   string
	apiToken   string
	hecURL     string
	hecToken   string
	skipVerify bool
	keyring    bool
	force      bool

	encryptPassword string
}

// Initialize sets up the command.
func (c *ProfileCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	group := app.Command("config", "Manage profiles and local configuration.")
	profile := group.Command("profile", "Manage connection profiles.")

	c.add = profile.Command("add", "Create or replace a profile.")
	c.add.Arg("name", "Profile name.").Required().StringVar(&c.name)
	c.add.Flag("base-url", "Splunk management URL.").Required().StringVar(&c.baseURL)
	c.add.Flag("username", "Username for session authentication.").StringVar(&c.username)
	c.add.Flag("password", "Password for session authentication.").StringVar(&c.password)
	c.add.Flag("api-token", "Splunk API token.").StringVar(&c.apiToken)
	c.add.Flag("hec-url", "HTTP Event Collector URL.").StringVar(&c.hecURL)
	c.add.Flag("hec-token", "HTTP Event Collector token.").StringVar(&c.hecToken)
	c.add.Flag("skip-verify", "Skip TLS certificate verification.").BoolVar(&c.skipVerify)
	c.add.Flag("keyring", "Store credentials in the OS keyring instead of the config file.").BoolVar(&c.keyring)

	c.list = profile.Command("ls", "List profiles.").Default()

	c.remove = profile.Command("rm", "Delete a profile.")
	c.remove.Arg("name", "Profile name.").Required().StringVar(&c.name)
	c.remove.Flag("force", "Skip the confirmation prompt.").BoolVar(&c.force)

	c.use = profile.Command("use", "Make a profile the active default.")
	c.use.Arg("name", "Profile name.").Required().StringVar(&c.name)

	c.encrypt = group.Command("encrypt", "Encrypt the config file at rest.")
	c.encrypt.Flag("password", "Derive the master key from this password instead of the OS keyring.").StringVar(&c.encryptPassword)
}

// TryRun executes the command when selected.
func (c *ProfileCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	switch cmd {
	case c.add.FullCommand():
		return true, trace.Wrap(c.runAdd(cfg))
	case c.list.FullCommand():
		return true, trace.Wrap(c.runList(cfg))
	case c.remove.FullCommand():
		return true, trace.Wrap(c.runRemove(cfg))
	case c.use.FullCommand():
		return true, trace.Wrap(c.runUse(cfg))
	case c.encrypt.FullCommand():
		return true, trace.Wrap(c.runEncrypt(cfg))
	}
	return false, nil
}

func (c *ProfileCommand) runAdd(cfg *CLIConfig) error {
	manager, err := cfg.Manager()
	if err != nil {
		return trace.Wrap(err)
	}

	p := config.Profile{
		Name:       c.name,
		BaseURL:    c.baseURL,
		Username:   c.username,
		HECURL:     c.hecURL,
		SkipVerify: c.skipVerify,
	}
	if p.APIToken, err = c.storeSecret(cfg, "api-token", c.apiToken); err != nil {
		return trace.Wrap(err)
	}
	if p.Password, err = c.storeSecret(cfg, "password", c.password); err != nil {
		return trace.Wrap(err)
	}
	if p.HECToken, err = c.storeSecret(cfg, "hec-token", c.hecToken); err != nil {
		return trace.Wrap(err)
	}

	if err := manager.UpsertProfile(p); err != nil {
		return trace.Wrap(err)
	}
	fmt.Fprintf(cfg.Stdout, "profile %s saved\n", c.name)
	return nil
}

// storeSecret places a credential either inline or in the OS keyring,
// depending on --keyring.
func (c *ProfileCommand) storeSecret(cfg *CLIConfig, kind, value string) (config.SecretValue, error) {
	if value == "" {
		return config.SecretValue{}, nil
	}
	if !c.keyring {
		return config.PlainSecret(secret.New(value)), nil
	}
	ref := secret.KeyringRef{
		Service: defaults.KeyringService,
		Account: "profile/" + c.name + "/" + kind,
	}
	if err := cfg.Keyring.Set(ref.Service, ref.Account, secret.New(value)); err != nil {
		return config.SecretValue{}, trace.Wrap(err, "storing %s in the OS keyring", kind)
	}
	return config.KeyringSecret(ref), nil
}

func (c *ProfileCommand) runList(cfg *CLIConfig) error {
	manager, err := cfg.Manager()
	if err != nil {
		return trace.Wrap(err)
	}
	state := manager.State()
	if len(state.Profiles) == 0 {
		fmt.Fprintln(cfg.Stdout, "No profiles configured.")
		return nil
	}
	for _, name := range state.ProfileNames() {
		p := state.Profiles[name]
		marker := " "
		if name == state.ActiveProfile {
			marker = "*"
		}
		auth := "session"
		if !p.APIToken.IsZero() {
			auth = "token"
		}
		fmt.Fprintf(cfg.Stdout, "%s %-20s %-40s %s\n", marker, name, p.BaseURL, auth)
	}
	return nil
}

func (c *ProfileCommand) runRemove(cfg *CLIConfig) error {
	manager, err := cfg.Manager()
	if err != nil {
		return trace.Wrap(err)
	}
	if !c.force {
		ok, err := confirm(cfg, fmt.Sprintf("Delete profile %q?", c.name))
		if err != nil || !ok {
			return trace.Wrap(err)
		}
	}
	if err := manager.DeleteProfile(c.name); err != nil {
		return trace.Wrap(err)
	}
	fmt.Fprintf(cfg.Stdout, "profile %s deleted\n", c.name)
	return nil
}

func (c *ProfileCommand) runUse(cfg *CLIConfig) error {
	manager, err := cfg.Manager()
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := manager.GetProfile(c.name); err != nil {
		return trace.Wrap(err)
	}
	if err := manager.Update(func(state *config.State) {
		state.ActiveProfile = c.name
	}); err != nil {
		return trace.Wrap(err)
	}
	fmt.Fprintf(cfg.Stdout, "active profile is now %s\n", c.name)
	return nil
}

// runEncrypt rewrites the state file encrypted under a fresh cipher. The
// master key comes from the OS keyring by default, or is derived from
// --password with the salt stored next to the config file.
func (c *ProfileCommand) runEncrypt(cfg *CLIConfig) error {
	manager, err := cfg.Manager()
	if err != nil {
		return trace.Wrap(err)
	}

	var key []byte
	if c.encryptPassword != "" {
		key, err = config.PasswordMasterKey(secret.New(c.encryptPassword), manager.Path()+".salt")
	} else {
		key, err = config.KeyringMasterKey(cfg.Keyring)
	}
	if err != nil {
		return trace.Wrap(err)
	}
	cipher, err := config.NewCipher(key)
	if err != nil {
		return trace.Wrap(err)
	}

	data, err := json.MarshalIndent(manager.State(), "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	encrypted, err := cipher.Encrypt(data)
	if err != nil {
		return trace.Wrap(err)
	}
	if err := utils.WriteFileAtomic(manager.Path(), encrypted, 0o600); err != nil {
		return trace.Wrap(err, "saving encrypted config file")
	}
	fmt.Fprintf(cfg.Stdout, "config file %s is now encrypted\n", manager.Path())
	return nil
}
