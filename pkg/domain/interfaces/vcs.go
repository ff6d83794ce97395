package interfaces

import (
	"context"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// VCS is the version-control backend the sync workflow drives. Every
// mutating method maps to exactly one git operation.
type VCS interface {
	// CheckInstalled fails with types.ErrTagMissingDependency when the git client is absent
	CheckInstalled(ctx context.Context) error
	// Root returns the top level of the checkout or fails with types.ErrTagNotARepository
	Root(ctx context.Context) (string, error)

	Remotes(ctx context.Context) ([]model.Remote, error)
	AddRemote(ctx context.Context, name, url string) error
	SetRemoteURL(ctx context.Context, name, url string) error
	// FetchAll fetches every remote and prunes deleted refs
	FetchAll(ctx context.Context) error
	FetchTags(ctx context.Context, remote string) error
	// RemoteBranches lists branch names (without the remote prefix) tracked for remote
	RemoteBranches(ctx context.Context, remote string) ([]string, error)

	// CurrentBranch returns "" on a detached HEAD
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)
	HasChanges(ctx context.Context) (bool, error)
	// CommitAll stages everything, untracked files included, and commits
	CommitAll(ctx context.Context, message string) error
	Switch(ctx context.Context, branch string) error
	// CreateBranch creates branch at start and switches to it
	CreateBranch(ctx context.Context, branch, start string) error
	// ForceBranch resets branch to start without switching
	ForceBranch(ctx context.Context, branch, start string) error

	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	// MergeFastForward fails with types.ErrTagNonFastForward when branches diverged
	MergeFastForward(ctx context.Context, ref string) error
	// MergeNoFastForward fails with types.ErrTagMergeConflict on conflict
	MergeNoFastForward(ctx context.Context, ref string) error
	AbortMerge(ctx context.Context) error
	// Rebase fails with types.ErrTagRebaseConflict on conflict
	Rebase(ctx context.Context, onto string) error
	AbortRebase(ctx context.Context) error
	Push(ctx context.Context, remote, branch string, opts model.PushOptions) error
}
