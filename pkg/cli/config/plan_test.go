package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
)

func buildPlan(t *testing.T, args ...string) (*model.Plan, error) {
	t.Helper()

	var (
		cfg  config.Plan
		plan *model.Plan
	)
	cmd := &cli.Command{
		Name:  "forksync",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var err error
			plan, err = cfg.Build(ctx, c)
			return err
		},
	}
	err := cmd.Run(context.Background(), append([]string{"forksync"}, args...))
	return plan, err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forksync.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestPlan_Defaults(t *testing.T) {
	plan, err := buildPlan(t, "--fork-url", "https://github.com/me/Archon.git")
	gt.NoError(t, err)

	wd, err := os.Getwd()
	gt.NoError(t, err)

	gt.Equal(t, plan.Repo, model.RepoConfig{
		WorkDir:        wd,
		ForkURL:        "https://github.com/me/Archon.git",
		UpstreamURL:    config.DefaultUpstreamURL,
		ForkRemote:     "origin",
		UpstreamRemote: "upstream",
		MainBranch:     "main",
		WorkBranch:     "myarchon",
	})
	gt.Equal(t, plan.Docker.Profile, "full")
	gt.Equal(t, plan.Docker.UIPort, 3737)
	gt.Equal(t, plan.Docker.RuntimeBranch, model.RuntimeBranchWork)
	gt.False(t, plan.Docker.Skip)
	gt.NoError(t, plan.Validate())
}

func TestPlan_EnvVars(t *testing.T) {
	t.Setenv("FORK_URL", "https://github.com/env/Archon.git")
	t.Setenv("WORK_BRANCH", "feature-x")
	t.Setenv("UI_PORT", "8080")
	t.Setenv("MIRROR_UPSTREAM_BRANCHES", "1")
	t.Setenv("DOCKER_PROFILE", "minimal")

	plan, err := buildPlan(t, "--work-branch", "from-flag")
	gt.NoError(t, err)
	gt.Equal(t, plan.Repo.ForkURL, "https://github.com/env/Archon.git")
	gt.Equal(t, plan.Repo.WorkBranch, "from-flag")
	gt.True(t, plan.Repo.MirrorBranches)
	gt.Equal(t, plan.Docker.UIPort, 8080)
	gt.Equal(t, plan.Docker.Profile, "minimal")
}

func TestPlan_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
fork-url = "https://github.com/file/Archon.git"
work-branch = "from-file"
ui-port = 4000
skip-runtime = true
compose-file = ["docker-compose.yml", "docker-compose.dev.yml"]
`)

	t.Run("file fills unset flags", func(t *testing.T) {
		plan, err := buildPlan(t, "--config", path)
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.ForkURL, "https://github.com/file/Archon.git")
		gt.Equal(t, plan.Repo.WorkBranch, "from-file")
		gt.Equal(t, plan.Docker.UIPort, 4000)
		gt.True(t, plan.Docker.Skip)
		gt.Equal(t, plan.Docker.ComposeFiles, []string{"docker-compose.yml", "docker-compose.dev.yml"})
	})

	t.Run("flags win over the file", func(t *testing.T) {
		plan, err := buildPlan(t, "--config", path, "--work-branch", "from-flag", "--ui-port", "5000")
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.WorkBranch, "from-flag")
		gt.Equal(t, plan.Docker.UIPort, 5000)
		gt.Equal(t, plan.Repo.ForkURL, "https://github.com/file/Archon.git")
	})

	t.Run("env wins over the file", func(t *testing.T) {
		t.Setenv("WORK_BRANCH", "from-env")
		plan, err := buildPlan(t, "--config", path)
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.WorkBranch, "from-env")
	})
}

func TestPlan_ConfigFileErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: `fork_url = "x"`},
		{name: "nested table", body: "[docker]\nprofile = \"full\""},
		{name: "invalid toml", body: `fork-url = `},
		{name: "invalid value", body: `ui-port = "not-a-number"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildPlan(t, "--config", writeConfig(t, tc.body))
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := buildPlan(t, "--config", filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err)
	})
}

func TestPlan_ForkURLFromRemote(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	gt.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:me/Archon.git"},
	})
	gt.NoError(t, err)

	t.Run("existing remote", func(t *testing.T) {
		plan, err := buildPlan(t, "-C", dir)
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.ForkURL, "git@github.com:me/Archon.git")
		gt.NoError(t, plan.Validate())
	})

	t.Run("flag wins over remote", func(t *testing.T) {
		plan, err := buildPlan(t, "-C", dir, "--fork-url", "https://github.com/other/Archon.git")
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.ForkURL, "https://github.com/other/Archon.git")
	})

	t.Run("fork remote not configured", func(t *testing.T) {
		plan, err := buildPlan(t, "-C", dir, "--fork-remote", "mine")
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.ForkURL, "")
		err = plan.Validate()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
	})

	t.Run("not a repository", func(t *testing.T) {
		plan, err := buildPlan(t, "-C", t.TempDir())
		gt.NoError(t, err)
		gt.Equal(t, plan.Repo.ForkURL, "")
	})
}
