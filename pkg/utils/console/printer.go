package console

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Printer writes human readable progress. It implements
// interfaces.StepObserver.
type Printer struct {
	w     io.Writer
	title *color.Color
	dim   *color.Color
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
}

// Option configures Printer
type Option func(*Printer)

// WithoutColor disables ANSI colors regardless of the terminal
func WithoutColor() Option {
	return func(p *Printer) {
		for _, c := range []*color.Color{p.title, p.dim, p.ok, p.warn, p.fail} {
			c.DisableColor()
		}
	}
}

// New creates a Printer writing to w
func New(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		w:     w,
		title: color.New(color.Bold),
		dim:   color.New(color.Faint),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) statusColor(status model.StepStatus) *color.Color {
	switch status {
	case model.StepOK:
		return p.ok
	case model.StepSkipped:
		return p.dim
	case model.StepRecovered, model.StepIgnored:
		return p.warn
	default:
		return p.fail
	}
}

func (p *Printer) StepStarted(name, description string) {
	p.title.Fprintf(p.w, "==> %s", name)
	p.dim.Fprintf(p.w, "  %s\n", description)
}

func (p *Printer) StepFinished(step model.Step) {
	p.statusColor(step.Status).Fprintf(p.w, "    %-9s", step.Status)
	p.dim.Fprintf(p.w, " (%s)", step.Duration.Round(10*time.Millisecond))
	if step.Message != "" {
		fmt.Fprintf(p.w, " %s", step.Message)
	}
	fmt.Fprintln(p.w)
}

// Plan lists the steps a run would execute, for --dry-run
func (p *Printer) Plan(steps []string, describe func(name string) string) {
	p.title.Fprintln(p.w, "Planned steps (dry run, nothing is changed):")
	for i, name := range steps {
		fmt.Fprintf(p.w, "%3d. %-16s", i+1, name)
		p.dim.Fprintln(p.w, describe(name))
	}
}

// Summary prints the final outcome of a run
func (p *Printer) Summary(result *model.RunResult) {
	fmt.Fprintln(p.w)
	if result.Success {
		p.ok.Fprintf(p.w, "Sync completed in %s\n", result.Elapsed().Round(10*time.Millisecond))
		fmt.Fprintf(p.w, "  synced branch:  %s\n", result.SyncedBranch)
		fmt.Fprintf(p.w, "  active branch:  %s\n", result.ActiveBranch)
		if result.RuntimeBranch != "" {
			fmt.Fprintf(p.w, "  runtime branch: %s\n", result.RuntimeBranch)
		}
		return
	}

	p.fail.Fprintf(p.w, "Sync aborted: %s\n", result.AbortReason)
	fmt.Fprintf(p.w, "  %s\n", result.Error)
}

// Check prints the report of the check command
func (p *Printer) Check(report *model.CheckReport) {
	fmt.Fprintf(p.w, "repository:     %s\n", report.RepoRoot)

	branch := report.CurrentBranch
	if branch == "" {
		branch = "(detached HEAD)"
	}
	fmt.Fprintf(p.w, "current branch: %s\n", branch)

	if report.Dirty {
		p.warn.Fprintln(p.w, "working tree:   uncommitted changes (will be autosaved)")
	} else {
		p.ok.Fprintln(p.w, "working tree:   clean")
	}

	p.presence("main branch:   ", report.MainBranchExists)
	p.presence("work branch:   ", report.WorkBranchExists)

	fmt.Fprintln(p.w, "remotes:")
	for _, r := range report.Remotes {
		fmt.Fprintf(p.w, "  %-10s %s\n", r.Name, r.URL)
	}
}

func (p *Printer) presence(label string, exists bool) {
	if exists {
		fmt.Fprintf(p.w, "%s present\n", label)
		return
	}
	p.dim.Fprintf(p.w, "%s absent (will be created)\n", label)
}
