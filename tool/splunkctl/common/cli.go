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

// Package common implements the splunkctl command tree. Every
// subcommand plugs itself into the shared kingpin application and is
// offered the parsed command line through TryRun.
package common

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/client/breaker"
	"github.com/splunkctl/splunkctl/lib/config"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/output"
	"github.com/splunkctl/splunkctl/lib/secret"
)

// Version is stamped at build time.
var Version = "0.0.0-dev"

// GlobalFlags apply to every subcommand.
type GlobalFlags struct {
	Profile    string
	BaseURL    string
	Username   string
	Password   string
	APIToken   string
	SkipVerify bool
	Insecure   bool
	Timeout    time.Duration
	MaxRetries int
	Format     string
	Output     string
	OutputFile string
	Detailed   bool
	ConfigPath string
	LogDir     string
	Earliest   string
	Latest     string
	MaxResults int
}

// CLIConfig is the shared context handed to every command.
type CLIConfig struct {
	Globals *GlobalFlags
	Stdout  io.Writer
	Stderr  io.Writer

	// Manager loads and persists profiles; lazily initialized.
	manager *config.Manager
	// Keyring resolves keyring-backed secrets.
	Keyring secret.Store

	snapshot   *config.Snapshot
	resolveErr error
	resolved   bool
}

// Manager returns the config manager, building it on first use.
func (c *CLIConfig) Manager() (*config.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}
	path := c.Globals.ConfigPath
	if path == "" {
		path = config.ConfigPath(os.Getenv)
	}
	statePath := path
	if statePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			statePath = filepath.Join(dir, "splunkctl", defaults.ConfigFileName)
		}
	}
	cipher, err := config.DetectCipher(statePath, c.Keyring)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	m, err := config.NewManager(config.ManagerConfig{
		Path:   path,
		Cipher: cipher,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	c.manager = m
	return m, nil
}

// Snapshot resolves the effective configuration once: defaults, then
// persisted profile, then environment, then CLI flags.
func (c *CLIConfig) Snapshot() (*config.Snapshot, error) {
	if c.resolved {
		return c.snapshot, trace.Wrap(c.resolveErr)
	}
	c.resolved = true

	m, err := c.Manager()
	if err != nil {
		c.resolveErr = err
		return nil, trace.Wrap(err)
	}
	state := m.State()

	flags := config.Overrides{
		BaseURL:      c.Globals.BaseURL,
		Username:     c.Globals.Username,
		Password:     secret.New(c.Globals.Password),
		APIToken:     secret.New(c.Globals.APIToken),
		Timeout:      c.Globals.Timeout,
		MaxRetries:   c.Globals.MaxRetries,
		EarliestTime: c.Globals.Earliest,
		LatestTime:   c.Globals.Latest,
		MaxResults:   c.Globals.MaxResults,
	}
	if c.Globals.SkipVerify || c.Globals.Insecure {
		skip := true
		flags.SkipVerify = &skip
	}

	c.snapshot, c.resolveErr = config.Resolve(config.ResolveParams{
		State:       state,
		ProfileName: c.Globals.Profile,
		Keyring:     c.Keyring,
		Getenv:      os.Getenv,
		Flags:       flags,
	})
	return c.snapshot, trace.Wrap(c.resolveErr)
}

// Client builds a connected client from the resolved snapshot.
func (c *CLIConfig) Client(ctx context.Context) (*client.Client, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return BuildClient(snap)
}

var (
	collectorOnce sync.Once
	collector     client.MetricsCollector
)

// Collector returns the process-wide client metrics collector. The
// prometheus vectors register exactly once; every client built in this
// process shares them.
func Collector() client.MetricsCollector {
	collectorOnce.Do(func() {
		c, err := client.NewPrometheusCollector(prometheus.DefaultRegisterer)
		if err != nil {
			collector = client.NewNopCollector()
			return
		}
		collector = c
	})
	return collector
}

// BuildClient turns a resolved snapshot into a client with the breaker
// and metrics substrate attached.
func BuildClient(snap *config.Snapshot) (*client.Client, error) {
	var auth client.AuthStrategy
	switch {
	case !snap.APIToken.IsZero():
		auth = client.NewAPITokenAuth(snap.APIToken)
	case snap.Username != "":
		auth = client.NewSessionAuth(snap.Username, snap.Password)
	default:
		return nil, trace.BadParameter("no credentials configured, set %s or run 'splunkctl config profile add'", config.EnvAPIToken)
	}
	brk, err := breaker.NewRegistry(breaker.Config{
		FailureThreshold:  defaults.BreakerFailureThreshold,
		OpenWindow:        defaults.BreakerOpenWindow,
		OpenWindowCap:     defaults.BreakerOpenWindowCap,
		RecoverySuccesses: defaults.BreakerRecoverySuccesses,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	clt, err := client.New(client.Config{
		BaseURL:    snap.BaseURL,
		Auth:       auth,
		SkipVerify: snap.SkipVerify,
		Timeout:    snap.Timeout,
		MaxRetries: snap.MaxRetries,
		Metrics:    Collector(),
		Breaker:    brk,
	})
	return clt, trace.Wrap(err)
}

// Format parses the output format flags. --output is the documented
// name, --format its long-standing alias; when both are given --output
// wins.
func (c *CLIConfig) Format() (output.Format, error) {
	name := c.Globals.Format
	if c.Globals.Output != "" {
		name = c.Globals.Output
	}
	return output.ParseFormat(name)
}

// Render writes a dataset in the selected format.
func (c *CLIConfig) Render(d output.Dataset) error {
	format, err := c.Format()
	if err != nil {
		return trace.Wrap(err)
	}
	d.Detailed = c.Globals.Detailed
	return trace.Wrap(output.Render(c.Stdout, format, d))
}

// RenderList adapts a typed resource slice plus paging info. Display
// methods hang off pointer receivers, hence the two-parameter form.
func RenderList[T any, PT interface {
	output.ResourceDisplay
	*T
}](c *CLIConfig, items []T, offset, total int) error {
	d := output.Dataset{Page: &output.Pagination{Offset: offset, Count: len(items), Total: total}}
	for i := range items {
		d.Records = append(d.Records, PT(&items[i]))
		d.Native = append(d.Native, items[i])
	}
	return trace.Wrap(c.Render(d))
}

// confirm prompts y/N on the terminal before destructive operations.
// Without a terminal it refuses, pointing at --force.
func confirm(cfg *CLIConfig, prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, trace.BadParameter("refusing to proceed without a terminal, re-run with --force")
	}
	fmt.Fprintf(cfg.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, trace.ConvertSystemError(err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// CLICommand must be implemented by every splunkctl command.
type CLICommand interface {
	// Initialize plugs the command into CLI argument parsing.
	Initialize(app *kingpin.Application, cfg *CLIConfig)
	// TryRun is executed after parsing. The command determines whether
	// selectedCommand belongs to it and returns match=true.
	TryRun(ctx context.Context, selectedCommand string, cfg *CLIConfig) (match bool, err error)
}

// Commands returns the full splunkctl command set.
func Commands() []CLICommand {
	return []CLICommand{
		&SearchCommand{},
		&JobsCommand{},
		&IndexesCommand{},
		&AppsCommand{},
		&UsersCommand{},
		&RolesCommand{},
		&SavedSearchesCommand{},
		&MacrosCommand{},
		&LookupsCommand{},
		&InputsCommand{},
		&ForwardersCommand{},
		&ConfigsCommand{},
		&AuditCommand{},
		&LicenseCommand{},
		&HealthCommand{},
		&KvstoreCommand{},
		&ClusterCommand{},
		&ListAllCommand{},
		&InternalLogsCommand{},
		&DoctorCommand{},
		&ProfileCommand{},
		&CompletionsCommand{},
	}
}

// Run parses the command line and executes the matched command,
// returning the process exit code.
func Run(args []string, commands []CLICommand) int {
	cfg := &CLIConfig{
		Globals: &GlobalFlags{},
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Keyring: secret.NewOSKeyring(),
	}

	// A malformed .env fails hard rather than half-loading credentials.
	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintln(cfg.Stderr, trace.UserMessage(err))
		return ExitGeneral
	}

	app := kingpin.New("splunkctl", "Operator toolkit for Splunk Enterprise.")
	app.HelpFlag.Short('h')
	app.Version(Version)

	g := cfg.Globals
	app.Flag("profile", "Named connection profile.").Short('p').StringVar(&g.Profile)
	app.Flag("base-url", "Splunk management URL, e.g. https://host:8089.").StringVar(&g.BaseURL)
	app.Flag("username", "Username for session authentication.").StringVar(&g.Username)
	app.Flag("password", "Password for session authentication.").StringVar(&g.Password)
	app.Flag("api-token", "Splunk API token.").StringVar(&g.APIToken)
	app.Flag("skip-verify", "Skip TLS certificate verification.").BoolVar(&g.SkipVerify)
	app.Flag("insecure", "Alias for --skip-verify.").Hidden().BoolVar(&g.Insecure)
	app.Flag("timeout", "Per-request timeout.").DurationVar(&g.Timeout)
	app.Flag("max-retries", "Retries after the initial attempt.").IntVar(&g.MaxRetries)
	app.Flag("format", "Output format: table, json, ndjson, csv or xml.").Short('f').Default("table").StringVar(&g.Format)
	app.Flag("output", "Output format, alias for --format.").Short('o').StringVar(&g.Output)
	app.Flag("output-file", "Write command output to this file instead of stdout.").StringVar(&g.OutputFile)
	app.Flag("config-path", "Path to the config file.").StringVar(&g.ConfigPath)
	app.Flag("log-dir", "Directory to write debug logs into.").StringVar(&g.LogDir)
	app.Flag("detailed", "Show extended columns.").BoolVar(&g.Detailed)
	app.Flag("earliest", "Default earliest time for searches.").StringVar(&g.Earliest)
	app.Flag("latest", "Default latest time for searches.").StringVar(&g.Latest)
	app.Flag("max-results", "Default search result cap.").IntVar(&g.MaxResults)

	for _, command := range commands {
		command.Initialize(app, cfg)
	}

	selected, err := app.Parse(args)
	if err != nil {
		fmt.Fprintln(cfg.Stderr, trace.UserMessage(err))
		return ExitGeneral
	}

	if g.LogDir != "" {
		closeLog, err := setupFileLogger(g.LogDir)
		if err != nil {
			fmt.Fprintln(cfg.Stderr, trace.UserMessage(err))
			return ExitGeneral
		}
		defer closeLog()
	}
	if g.OutputFile != "" {
		f, err := os.Create(g.OutputFile)
		if err != nil {
			fmt.Fprintln(cfg.Stderr, trace.UserMessage(trace.ConvertSystemError(err)))
			return ExitGeneral
		}
		defer f.Close()
		cfg.Stdout = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("running command", "command", selected, "version", Version)
	for _, command := range commands {
		match, err := command.TryRun(ctx, selected, cfg)
		if !match {
			continue
		}
		if err != nil {
			slog.Debug("command failed", "command", selected, "error", err)
			if ctx.Err() != nil || trace.Unwrap(err) == context.Canceled {
				fmt.Fprintln(cfg.Stderr, "cancelled")
				return ExitCancelled
			}
			fmt.Fprintln(cfg.Stderr, trace.UserMessage(err))
			return ExitCode(err)
		}
		return ExitOK
	}

	fmt.Fprintf(cfg.Stderr, "unknown command %q\n", selected)
	return ExitGeneral
}

// setupFileLogger routes debug-level logging into <dir>/splunkctl.log.
// Without --log-dir the default handler keeps writing info+ to stderr.
func setupFileLogger(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "splunkctl.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}
