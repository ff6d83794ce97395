// Package git implements interfaces.VCS. Read-only queries go through go-git;
// anything that changes the repository or talks to a remote shells out to the
// git CLI, because rebase, fast-forward-only merge and push with lease are
// not available in go-git.
package git

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
	"github.com/m-mizutani/forksync/pkg/infra/command"
)

// Client runs git against a single working directory
type Client struct {
	dir     string
	runner  command.Runner
	program string
	env     map[string]string
}

// Option configures Client
type Option func(*Client)

// WithProgram overrides the git executable
func WithProgram(program string) Option {
	return func(c *Client) {
		c.program = program
	}
}

// WithEnv sets extra environment variables for every git invocation. They
// are merged over the default LC_ALL=C.
func WithEnv(env map[string]string) Option {
	return func(c *Client) {
		for k, v := range env {
			c.env[k] = v
		}
	}
}

var _ interfaces.VCS = (*Client)(nil)

// New creates a git client for dir
func New(dir string, runner command.Runner, opts ...Option) *Client {
	c := &Client{
		dir:     dir,
		runner:  runner,
		program: "git",
		// failures are classified by git's English messages
		env: map[string]string{"LC_ALL": "C"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) run(ctx context.Context, args ...string) (*command.Result, error) {
	return c.runner.Run(ctx, command.Cmd{
		Name: c.program,
		Args: args,
		Dir:  c.dir,
		Env:  c.env,
	})
}

func (c *Client) stream(ctx context.Context, args ...string) error {
	_, err := c.runner.Run(ctx, command.Cmd{
		Name:   c.program,
		Args:   args,
		Dir:    c.dir,
		Env:    c.env,
		Stream: true,
	})
	return err
}

// CheckInstalled verifies the git client is on PATH
func (c *Client) CheckInstalled(ctx context.Context) error {
	if _, err := c.runner.LookPath(c.program); err != nil {
		return goerr.Wrap(err, "git is not installed")
	}
	return nil
}

// AddRemote adds a new remote
func (c *Client) AddRemote(ctx context.Context, name, url string) error {
	if _, err := c.run(ctx, "remote", "add", name, url); err != nil {
		return goerr.Wrap(err, "failed to add remote", goerr.V("remote", name))
	}
	return nil
}

// SetRemoteURL replaces the URL of an existing remote
func (c *Client) SetRemoteURL(ctx context.Context, name, url string) error {
	if _, err := c.run(ctx, "remote", "set-url", name, url); err != nil {
		return goerr.Wrap(err, "failed to set remote URL", goerr.V("remote", name))
	}
	return nil
}

// FetchAll fetches all remotes, pruning deleted refs
func (c *Client) FetchAll(ctx context.Context) error {
	if err := c.stream(ctx, "fetch", "--all", "--prune"); err != nil {
		return goerr.Wrap(err, "failed to fetch remotes")
	}
	return nil
}

// FetchTags fetches tags from remote
func (c *Client) FetchTags(ctx context.Context, remote string) error {
	if err := c.stream(ctx, "fetch", remote, "--tags"); err != nil {
		return goerr.Wrap(err, "failed to fetch tags", goerr.V("remote", remote))
	}
	return nil
}

// HasChanges reports uncommitted modifications, untracked files included
func (c *Client) HasChanges(ctx context.Context) (bool, error) {
	result, err := c.run(ctx, "status", "--porcelain", "--untracked-files=normal")
	if err != nil {
		if classify(err) == failureNotRepository {
			return false, goerr.Wrap(err, "not a git repository", goerr.T(types.ErrTagNotARepository))
		}
		return false, goerr.Wrap(err, "failed to read status")
	}
	return strings.TrimSpace(result.Stdout) != "", nil
}

// CommitAll stages every change and commits it
func (c *Client) CommitAll(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "add", "--all"); err != nil {
		return goerr.Wrap(err, "failed to stage changes")
	}
	if _, err := c.run(ctx, "commit", "--no-verify", "-m", message); err != nil {
		return goerr.Wrap(err, "failed to commit changes", goerr.V("message", message))
	}
	return nil
}

// Switch checks out an existing branch
func (c *Client) Switch(ctx context.Context, branch string) error {
	if _, err := c.run(ctx, "switch", branch); err != nil {
		return goerr.Wrap(err, "failed to switch branch", goerr.V("branch", branch))
	}
	return nil
}

// CreateBranch creates branch at start and switches to it
func (c *Client) CreateBranch(ctx context.Context, branch, start string) error {
	if _, err := c.run(ctx, "switch", "-c", branch, start); err != nil {
		return goerr.Wrap(err, "failed to create branch",
			goerr.V("branch", branch),
			goerr.V("start", start),
		)
	}
	return nil
}

// ForceBranch points branch at start, creating it when missing. The branch
// is configured to track start.
func (c *Client) ForceBranch(ctx context.Context, branch, start string) error {
	if _, err := c.run(ctx, "branch", "--force", "--track", branch, start); err != nil {
		return goerr.Wrap(err, "failed to force branch",
			goerr.V("branch", branch),
			goerr.V("start", start),
		)
	}
	return nil
}

// IsAncestor reports whether ancestor is reachable from descendant
func (c *Client) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := c.run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	if execErr, ok := command.AsExecError(err); ok && execErr.ExitCode == 1 {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to compare commits",
		goerr.V("ancestor", ancestor),
		goerr.V("descendant", descendant),
	)
}

// MergeFastForward advances the current branch to ref
func (c *Client) MergeFastForward(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "merge", "--ff-only", ref)
	if err == nil {
		return nil
	}
	if classify(err) == failureNonFastForward {
		return goerr.Wrap(err, "fast-forward is not possible",
			goerr.V("ref", ref),
			goerr.T(types.ErrTagNonFastForward),
		)
	}
	return goerr.Wrap(err, "failed to fast-forward", goerr.V("ref", ref))
}

// MergeNoFastForward merges ref with a merge commit
func (c *Client) MergeNoFastForward(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "merge", "--no-ff", "--no-edit", ref)
	if err == nil {
		return nil
	}
	if classify(err) == failureConflict {
		return goerr.Wrap(err, "merge conflict",
			goerr.V("ref", ref),
			goerr.T(types.ErrTagMergeConflict),
		)
	}
	return goerr.Wrap(err, "failed to merge", goerr.V("ref", ref))
}

// AbortMerge aborts an in-progress merge
func (c *Client) AbortMerge(ctx context.Context) error {
	if _, err := c.run(ctx, "merge", "--abort"); err != nil {
		return goerr.Wrap(err, "failed to abort merge")
	}
	return nil
}

// Rebase rebases the current branch onto onto
func (c *Client) Rebase(ctx context.Context, onto string) error {
	_, err := c.run(ctx, "rebase", onto)
	if err == nil {
		return nil
	}
	if classify(err) == failureConflict {
		return goerr.Wrap(err, "rebase conflict",
			goerr.V("onto", onto),
			goerr.T(types.ErrTagRebaseConflict),
		)
	}
	return goerr.Wrap(err, "failed to rebase", goerr.V("onto", onto))
}

// AbortRebase aborts an in-progress rebase
func (c *Client) AbortRebase(ctx context.Context) error {
	if _, err := c.run(ctx, "rebase", "--abort"); err != nil {
		return goerr.Wrap(err, "failed to abort rebase")
	}
	return nil
}

// Push pushes branch to remote
func (c *Client) Push(ctx context.Context, remote, branch string, opts model.PushOptions) error {
	args := []string{"push"}
	if opts.ForceWithLease {
		args = append(args, "--force-with-lease")
	}
	if opts.SetUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, branch)

	if err := c.stream(ctx, args...); err != nil {
		vals := []goerr.Option{goerr.V("remote", remote), goerr.V("branch", branch)}
		if classify(err) == failureStaleLease {
			return goerr.Wrap(err, "push rejected, remote branch moved since last fetch", vals...)
		}
		return goerr.Wrap(err, "failed to push", vals...)
	}
	return nil
}
