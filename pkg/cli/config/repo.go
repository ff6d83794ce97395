package config

import (
	"context"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// DefaultUpstreamURL is the project the default work branch tracks
const DefaultUpstreamURL = "https://github.com/coleam00/Archon.git"

// Repo holds the fork and branch configuration
type Repo struct {
	WorkDir        string
	ForkURL        string
	UpstreamURL    string
	ForkRemote     string
	UpstreamRemote string
	MainBranch     string
	WorkBranch     string
	MirrorBranches bool
}

// Flags returns CLI flags for repository configuration
func (c *Repo) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "work-dir",
			Aliases:     []string{"C"},
			Usage:       "Repository checkout to operate on",
			Value:       ".",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("FORKSYNC_WORK_DIR"),
		},
		&cli.StringFlag{
			Name:        "fork-url",
			Usage:       "URL of the personal fork (default: current URL of --fork-remote)",
			Destination: &c.ForkURL,
			Sources:     cli.EnvVars("FORK_URL"),
		},
		&cli.StringFlag{
			Name:        "upstream-url",
			Usage:       "URL of the upstream repository",
			Value:       DefaultUpstreamURL,
			Destination: &c.UpstreamURL,
			Sources:     cli.EnvVars("UPSTREAM_URL"),
		},
		&cli.StringFlag{
			Name:        "fork-remote",
			Usage:       "Local remote name of the fork",
			Value:       "origin",
			Destination: &c.ForkRemote,
			Sources:     cli.EnvVars("FORK_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "upstream-remote",
			Usage:       "Local remote name of upstream",
			Value:       "upstream",
			Destination: &c.UpstreamRemote,
			Sources:     cli.EnvVars("UPSTREAM_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "main-branch",
			Usage:       "Branch kept identical to upstream",
			Value:       "main",
			Destination: &c.MainBranch,
			Sources:     cli.EnvVars("MAIN_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "work-branch",
			Usage:       "Personal branch rebased onto main",
			Value:       "myarchon",
			Destination: &c.WorkBranch,
			Sources:     cli.EnvVars("WORK_BRANCH"),
		},
		&cli.BoolFlag{
			Name:        "mirror-upstream-branches",
			Usage:       "Mirror every upstream branch to the fork",
			Destination: &c.MirrorBranches,
			Sources:     cli.EnvVars("MIRROR_UPSTREAM_BRANCHES"),
		},
	}
}

// Build converts the flags into model.RepoConfig. WorkDir is made absolute.
// Without --fork-url, the URL already configured for the fork remote in the
// checkout is used.
func (c *Repo) Build(ctx context.Context) (model.RepoConfig, error) {
	dir, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return model.RepoConfig{}, goerr.Wrap(err, "failed to resolve work dir", goerr.V("work_dir", c.WorkDir))
	}

	forkURL := c.ForkURL
	if forkURL == "" {
		forkURL = remoteURL(ctx, dir, c.ForkRemote)
	}

	return model.RepoConfig{
		WorkDir:        dir,
		ForkURL:        forkURL,
		UpstreamURL:    c.UpstreamURL,
		ForkRemote:     c.ForkRemote,
		UpstreamRemote: c.UpstreamRemote,
		MainBranch:     c.MainBranch,
		WorkBranch:     c.WorkBranch,
		MirrorBranches: c.MirrorBranches,
	}, nil
}

func remoteURL(ctx context.Context, dir, name string) string {
	logger := ctxlog.From(ctx).With("dir", dir, "remote", name)

	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		logger.Debug("No repository to read fork URL from", "error", err)
		return ""
	}
	remote, err := repo.Remote(name)
	if err != nil {
		logger.Debug("Fork remote is not configured", "error", err)
		return ""
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		logger.Debug("Using fork URL of existing remote")
		return urls[0]
	}
	return ""
}
