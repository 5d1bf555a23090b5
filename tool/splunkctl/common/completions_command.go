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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/utils"
)

// completableResources is what the hidden "complete" subcommand can
// enumerate. Profiles come from the local catalog; the rest hit the API
// through a TTL cache.
var completableResources = []string{"profiles", "indexes", "saved-searches", "jobs", "apps"}

// CompletionsCommand implements "splunkctl completions" and the hidden
// "complete" subcommand the dynamic helpers shell out to.
type CompletionsCommand struct {
	completions *kingpin.CmdClause
	complete    *kingpin.CmdClause

	shell    string
	dynamic  bool
	cacheTTL time.Duration
	resource string

	app *kingpin.Application
}

// Initialize sets up the command.
func (c *CompletionsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.app = app

	c.completions = app.Command("completions", "Emit a shell completion script.")
	c.completions.Arg("shell", "Target shell: bash, zsh, fish, powershell or elvish.").Required().EnumVar(&c.shell, "bash", "zsh", "fish", "powershell", "elvish")
	c.completions.Flag("dynamic", "Include helpers that complete live resource names.").BoolVar(&c.dynamic)
	c.completions.Flag("completion-cache-ttl", "Freshness window for cached dynamic values.").Default(defaults.CompletionCacheTTL.String()).DurationVar(&c.cacheTTL)

	c.complete = app.Command("complete", "Emit completion values for one resource.").Hidden()
	c.complete.Arg("resource", "One of: "+strings.Join(completableResources, ", ")).Required().EnumVar(&c.resource, completableResources...)
	c.complete.Flag("completion-cache-ttl", "Freshness window for the cache.").Default(defaults.CompletionCacheTTL.String()).DurationVar(&c.cacheTTL)
}

// TryRun executes the command when selected.
func (c *CompletionsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	switch cmd {
	case c.completions.FullCommand():
		return true, trace.Wrap(c.runScript(cfg))
	case c.complete.FullCommand():
		return true, trace.Wrap(c.runComplete(ctx, cfg))
	}
	return false, nil
}

// commandNames walks the parsed application model so the script always
// matches the registered command tree.
func (c *CompletionsCommand) commandNames() []string {
	var names []string
	for _, cmd := range c.app.Model().Commands {
		if cmd.Hidden {
			continue
		}
		names = append(names, cmd.Name)
	}
	return names
}

func (c *CompletionsCommand) runScript(cfg *CLIConfig) error {
	commands := strings.Join(c.commandNames(), " ")
	switch c.shell {
	case "bash":
		fmt.Fprintf(cfg.Stdout, `_splunkctl() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    if [ "$COMP_CWORD" -eq 1 ]; then
        COMPREPLY=($(compgen -W "%s" -- "$cur"))
    fi
}
complete -F _splunkctl splunkctl
`, commands)
	case "zsh":
		fmt.Fprintf(cfg.Stdout, `#compdef splunkctl
_splunkctl() {
    local -a commands
    commands=(%s)
    _describe 'command' commands
}
_splunkctl "$@"
`, commands)
	case "fish":
		for _, name := range c.commandNames() {
			fmt.Fprintf(cfg.Stdout, "complete -c splunkctl -n '__fish_use_subcommand' -a %s\n", name)
		}
	case "powershell":
		quoted := make([]string, 0, len(c.commandNames()))
		for _, name := range c.commandNames() {
			quoted = append(quoted, "'"+name+"'")
		}
		fmt.Fprintf(cfg.Stdout, `Register-ArgumentCompleter -Native -CommandName splunkctl -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)
    $commands = @(%s)
    $commands | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`, strings.Join(quoted, ", "))
	case "elvish":
		fmt.Fprintf(cfg.Stdout, `set edit:completion:arg-completer[splunkctl] = {|@args|
    if (== (count $args) 2) {
        put %s
    }
}
`, commands)
	}
	if c.dynamic {
		c.writeDynamicHelpers(cfg)
	}
	return nil
}

// writeDynamicHelpers appends shell functions that shell out to the
// hidden complete subcommand; the cache TTL is baked into the script.
func (c *CompletionsCommand) writeDynamicHelpers(cfg *CLIConfig) {
	ttl := c.cacheTTL.String()
	switch c.shell {
	case "bash", "zsh":
		for _, resource := range completableResources {
			fn := "_splunkctl_complete_" + strings.ReplaceAll(resource, "-", "_")
			fmt.Fprintf(cfg.Stdout, `%s() {
    splunkctl complete %s --completion-cache-ttl=%s 2>/dev/null
}
`, fn, resource, ttl)
		}
	case "fish":
		for _, resource := range completableResources {
			fmt.Fprintf(cfg.Stdout,
				"complete -c splunkctl -n '__fish_seen_subcommand_from %s' -a '(splunkctl complete %s --completion-cache-ttl=%s 2>/dev/null)'\n",
				resource, resource, ttl)
		}
	case "powershell":
		for _, resource := range completableResources {
			fn := "_splunkctl_complete_" + strings.ReplaceAll(resource, "-", "_")
			fmt.Fprintf(cfg.Stdout, "function %s { splunkctl complete %s --completion-cache-ttl=%s 2>$null }\n", fn, resource, ttl)
		}
	case "elvish":
		for _, resource := range completableResources {
			fn := "_splunkctl_complete_" + strings.ReplaceAll(resource, "-", "_")
			fmt.Fprintf(cfg.Stdout, "fn %s { splunkctl complete %s --completion-cache-ttl=%s 2>/dev/null }\n", fn, resource, ttl)
		}
	}
}

func (c *CompletionsCommand) runComplete(ctx context.Context, cfg *CLIConfig) error {
	// Profiles never touch the network; completion must work offline.
	if c.resource == "profiles" {
		manager, err := cfg.Manager()
		if err != nil {
			return trace.Wrap(err)
		}
		for _, name := range manager.State().ProfileNames() {
			fmt.Fprintln(cfg.Stdout, name)
		}
		return nil
	}

	if values, ok := c.cachedValues(); ok {
		for _, v := range values {
			fmt.Fprintln(cfg.Stdout, v)
		}
		return nil
	}

	clt, err := cfg.Client(ctx)
	if err != nil {
		return trace.Wrap(err)
	}
	values, err := fetchCompletionValues(ctx, clt, c.resource)
	if err != nil {
		return trace.Wrap(err)
	}
	c.storeCache(values)
	for _, v := range values {
		fmt.Fprintln(cfg.Stdout, v)
	}
	return nil
}

func fetchCompletionValues(ctx context.Context, clt *client.Client, resource string) ([]string, error) {
	var names []string
	switch resource {
	case "indexes":
		indexes, _, err := clt.ListIndexes(ctx, client.PageAll)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		for _, i := range indexes {
			names = append(names, i.Name)
		}
	case "saved-searches":
		searches, _, err := clt.ListSavedSearches(ctx, client.PageAll)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		for _, s := range searches {
			names = append(names, s.Name)
		}
	case "jobs":
		jobs, _, err := clt.ListJobs(ctx, client.PageAll)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		for _, j := range jobs {
			names = append(names, j.SID)
		}
	case "apps":
		apps, _, err := clt.ListApps(ctx, client.PageAll)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		for _, a := range apps {
			names = append(names, a.Name)
		}
	default:
		return nil, trace.BadParameter("unknown completion resource %q", resource)
	}
	return names, nil
}

func (c *CompletionsCommand) cachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "splunkctl", "complete-"+c.resource+".txt")
}

func (c *CompletionsCommand) cachedValues() ([]string, bool) {
	path := c.cachePath()
	if path == "" {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > c.cacheTTL {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var values []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			values = append(values, line)
		}
	}
	return values, true
}

func (c *CompletionsCommand) storeCache(values []string) {
	path := c.cachePath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	// Best effort; completion still works when the cache cannot be
	// written.
	_ = utils.WriteFileAtomic(path, []byte(strings.Join(values, "\n")+"\n"), 0o600)
}
