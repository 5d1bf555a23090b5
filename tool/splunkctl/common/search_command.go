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
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gravitational/trace"
	"golang.org/x/term"

	"github.com/splunkctl/splunkctl/lib/client"
	"github.com/splunkctl/splunkctl/lib/defaults"
	"github.com/splunkctl/splunkctl/lib/output"
)

// SearchCommand implements "splunkctl search".
type SearchCommand struct {
	search *kingpin.CmdClause

	query      string
	execTime   int
	validate   bool
	noProgress bool
}

// Initialize sets up the command.
func (c *SearchCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.search = app.Command("search", "Run an SPL search and print the results.")
	c.search.Arg("query", "SPL query, e.g. 'index=main error'.").Required().StringVar(&c.query)
	c.search.Flag("exec-time", "Server-side execution limit in seconds.").IntVar(&c.execTime)
	c.search.Flag("validate", "Parse the query without running it.").BoolVar(&c.validate)
	c.search.Flag("no-progress", "Suppress the progress line on stderr.").BoolVar(&c.noProgress)
}

// TryRun executes the command when selected.
func (c *SearchCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.search.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}

	if c.validate {
		messages, err := clt.ValidateQuery(ctx, c.query)
		if err != nil {
			return true, trace.Wrap(err)
		}
		if len(messages) == 0 {
			fmt.Fprintln(cfg.Stdout, "query parses cleanly")
			return true, nil
		}
		for _, msg := range messages {
			fmt.Fprintln(cfg.Stdout, msg)
		}
		return true, trace.BadParameter("query has %d parser message(s)", len(messages))
	}

	snap, err := cfg.Snapshot()
	if err != nil {
		return true, trace.Wrap(err)
	}
	params := client.SearchParams{
		Query:        c.query,
		EarliestTime: snap.EarliestTime,
		LatestTime:   snap.LatestTime,
		MaxResults:   snap.MaxResults,
		ExecTime:     c.execTime,
	}

	// The progress line goes to stderr on a terminal only, so piped
	// output stays machine-readable.
	var progress client.ProgressFunc
	if !c.noProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		progress = func(fraction float64) {
			fmt.Fprintf(cfg.Stderr, "\rsearching... %3.0f%%", fraction*100)
		}
	}
	results, _, err := clt.SearchWithProgress(ctx, params, progress)
	if progress != nil {
		fmt.Fprint(cfg.Stderr, "\r\033[K")
	}
	if err != nil {
		return true, trace.Wrap(err)
	}

	d := output.DynamicDataset(results.Fields, results.Rows)
	d.Page = &output.Pagination{Offset: results.Offset, Count: len(results.Rows), Total: results.Total}
	return true, trace.Wrap(cfg.Render(d))
}

// JobsCommand implements "splunkctl jobs".
type JobsCommand struct {
	list     *kingpin.CmdClause
	status   *kingpin.CmdClause
	results  *kingpin.CmdClause
	cancel   *kingpin.CmdClause
	finalize *kingpin.CmdClause

	sid    string
	offset int
	count  int
}

// Initialize sets up the command.
func (c *JobsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	jobs := app.Command("jobs", "Manage search jobs.")
	c.list = jobs.Command("ls", "List search jobs.").Default()
	c.list.Flag("offset", "Pagination offset.").IntVar(&c.offset)
	c.list.Flag("count", "Page size.").IntVar(&c.count)

	c.status = jobs.Command("status", "Show a job's status.")
	c.status.Arg("sid", "Search job SID.").Required().StringVar(&c.sid)

	c.results = jobs.Command("results", "Fetch a page of job results.")
	c.results.Arg("sid", "Search job SID.").Required().StringVar(&c.sid)
	c.results.Flag("offset", "Result offset.").IntVar(&c.offset)
	c.results.Flag("count", "Page size.").IntVar(&c.count)

	c.cancel = jobs.Command("rm", "Delete a search job.")
	c.cancel.Arg("sid", "Search job SID.").Required().StringVar(&c.sid)

	c.finalize = jobs.Command("finalize", "Finalize a running job.")
	c.finalize.Arg("sid", "Search job SID.").Required().StringVar(&c.sid)
}

// TryRun executes the command when selected.
func (c *JobsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	var run func(context.Context, *client.Client) error
	switch cmd {
	case c.list.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			jobs, total, err := clt.ListJobs(ctx, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, jobs, c.offset, total)
		}
	case c.status.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			status, err := clt.GetJobStatus(ctx, c.sid)
			if err != nil {
				return trace.Wrap(err)
			}
			return RenderList(cfg, []client.SearchJobStatus{*status}, 0, 1)
		}
	case c.results.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			results, err := clt.GetSearchResults(ctx, c.sid, client.Page{Offset: c.offset, Count: c.count})
			if err != nil {
				return trace.Wrap(err)
			}
			d := output.DynamicDataset(results.Fields, results.Rows)
			d.Page = &output.Pagination{Offset: results.Offset, Count: len(results.Rows), Total: results.Total}
			return trace.Wrap(cfg.Render(d))
		}
	case c.cancel.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.DeleteJob(ctx, c.sid); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "job %s deleted\n", c.sid)
			return nil
		}
	case c.finalize.FullCommand():
		run = func(ctx context.Context, clt *client.Client) error {
			if err := clt.FinalizeJob(ctx, c.sid); err != nil {
				return trace.Wrap(err)
			}
			fmt.Fprintf(cfg.Stdout, "job %s finalized\n", c.sid)
			return nil
		}
	default:
		return false, nil
	}

	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	return true, trace.Wrap(run(ctx, clt))
}

// InternalLogsCommand implements "splunkctl internal-logs", the one
// streaming consumer: pages of _internal events flow through the
// streaming formatters as they arrive.
type InternalLogsCommand struct {
	logs *kingpin.CmdClause

	filter string
	follow bool
	count  int
}

// Initialize sets up the command.
func (c *InternalLogsCommand) Initialize(app *kingpin.Application, cfg *CLIConfig) {
	c.logs = app.Command("internal-logs", "Fetch splunkd internal logs.")
	c.logs.Arg("filter", "Additional SPL filter, e.g. 'log_level=ERROR'.").StringVar(&c.filter)
	c.logs.Flag("follow", "Poll for new events until interrupted.").Short('F').BoolVar(&c.follow)
	c.logs.Flag("count", "Page size per fetch.").Default("100").IntVar(&c.count)
}

// TryRun executes the command when selected.
func (c *InternalLogsCommand) TryRun(ctx context.Context, cmd string, cfg *CLIConfig) (bool, error) {
	if cmd != c.logs.FullCommand() {
		return false, nil
	}
	clt, err := cfg.Client(ctx)
	if err != nil {
		return true, trace.Wrap(err)
	}
	format, err := cfg.Format()
	if err != nil {
		return true, trace.Wrap(err)
	}

	stream := output.NewStream(cfg.Stdout, format, cfg.Globals.Detailed)
	defer stream.Close()

	offset := 0
	for {
		results, err := clt.InternalLogs(ctx, c.filter, client.Page{Offset: offset, Count: c.count})
		if err != nil {
			return true, trace.Wrap(err)
		}
		if len(results.Rows) > 0 {
			if err := stream.WriteBatch(output.DynamicDataset(results.Fields, results.Rows)); err != nil {
				return true, trace.Wrap(err)
			}
			offset += len(results.Rows)
		}
		if !c.follow {
			if results.Total >= 0 && offset < results.Total {
				// More pages of the bounded fetch.
				continue
			}
			return true, nil
		}
		select {
		case <-ctx.Done():
			return true, trace.Wrap(ctx.Err())
		case <-time.After(defaults.InternalLogPollInterval):
		}
	}
}
