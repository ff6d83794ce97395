package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// Cmd describes a single external process invocation
type Cmd struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string

	// Stream mirrors the process output to the runner's writers while
	// still capturing it.
	Stream bool
}

func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds captured process output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (*Result, error)
	LookPath(name string) (string, error)
}

// ExecError is returned when a process exits non-zero or cannot be started
type ExecError struct {
	Cmd      string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	b := new(strings.Builder)
	b.WriteString(e.Err.Error())
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = lastLine(e.Stdout)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Output returns stdout and stderr joined, for pattern matching on git messages
// that are printed to either stream.
func (e *ExecError) Output() string {
	return e.Stdout + "\n" + e.Stderr
}

// AsExecError extracts an ExecError from err
func AsExecError(err error) (*ExecError, bool) {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}

type runner struct {
	stdout io.Writer
	stderr io.Writer
}

// Option configures the runner
type Option func(*runner)

// WithStdout sets where streamed stdout is mirrored
func WithStdout(w io.Writer) Option {
	return func(r *runner) {
		r.stdout = w
	}
}

// WithStderr sets where streamed stderr is mirrored
func WithStderr(w io.Writer) Option {
	return func(r *runner) {
		r.stderr = w
	}
}

// New creates a Runner backed by os/exec
func New(opts ...Option) Runner {
	r := &runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *runner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", goerr.Wrap(err, "program not found on PATH",
			goerr.V("program", name),
			goerr.T(types.ErrTagMissingDependency),
		)
	}
	return p, nil
}

func (r *runner) Run(ctx context.Context, c Cmd) (*Result, error) {
	logger := ctxlog.From(ctx)
	logger.Debug("Running command", "cmd", c.String(), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	if c.Stream {
		cmd.Stdout = io.MultiWriter(stdout, r.stdout)
		cmd.Stderr = io.MultiWriter(stderr, r.stderr)
	} else {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
	}

	return result, goerr.Wrap(&ExecError{
		Cmd:      c.String(),
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Err:      err,
	}, "command failed",
		goerr.V("cmd", c.String()),
		goerr.V("exit_code", result.ExitCode),
		goerr.T(types.ErrTagCommandFailed),
	)
}
