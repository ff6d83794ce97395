package git

import (
	"context"
	"errors"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// open reads repository state from disk. The repository is reopened per call
// so refs and config written by the git CLI in between are always visible.
func (c *Client) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(c.dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, goerr.Wrap(err, "not a git repository",
				goerr.V("dir", c.dir),
				goerr.T(types.ErrTagNotARepository),
			)
		}
		return nil, goerr.Wrap(err, "failed to open repository", goerr.V("dir", c.dir))
	}
	return repo, nil
}

// Root returns the top level directory of the working tree
func (c *Client) Root(ctx context.Context) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", goerr.Wrap(err, "repository has no working tree",
			goerr.V("dir", c.dir),
			goerr.T(types.ErrTagNotARepository),
		)
	}
	return wt.Filesystem.Root(), nil
}

// Remotes lists configured remotes sorted by name
func (c *Client) Remotes(ctx context.Context) ([]model.Remote, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remotes")
	}

	result := make([]model.Remote, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		remote := model.Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			remote.URL = cfg.URLs[0]
		}
		result = append(result, remote)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// RemoteBranches lists remote-tracking branches of remote, without the
// remote prefix and without the symbolic HEAD.
func (c *Client) RemoteBranches(ctx context.Context, remote string) ([]string, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	refs, err := repo.References()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list references")
	}
	defer refs.Close()

	prefix := remote + "/"
	var branches []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() {
			return nil
		}
		short := ref.Name().Short()
		if !strings.HasPrefix(short, prefix) {
			return nil
		}
		name := strings.TrimPrefix(short, prefix)
		if name == "HEAD" {
			return nil
		}
		branches = append(branches, name)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to iterate references", goerr.V("remote", remote))
	}
	sort.Strings(branches)
	return branches, nil
}

// CurrentBranch returns the checked out branch, or "" for a detached HEAD
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read HEAD")
	}
	if head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	return "", nil
}

// BranchExists reports whether a local branch exists
func (c *Client) BranchExists(ctx context.Context, name string) (bool, error) {
	repo, err := c.open()
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to resolve branch", goerr.V("branch", name))
}
