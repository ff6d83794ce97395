package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// RuntimeBranch selects which branch the compose stack is served from.
type RuntimeBranch string

const (
	RuntimeBranchWork RuntimeBranch = "work"
	RuntimeBranchMain RuntimeBranch = "main"
)

// RepoConfig describes the fork, its upstream and the branches to maintain.
type RepoConfig struct {
	WorkDir        string `json:"work_dir"`
	ForkURL        string `json:"fork_url" masq:"secret"`
	UpstreamURL    string `json:"upstream_url" masq:"secret"`
	ForkRemote     string `json:"fork_remote"`
	UpstreamRemote string `json:"upstream_remote"`
	MainBranch     string `json:"main_branch"`
	WorkBranch     string `json:"work_branch"`
	MirrorBranches bool   `json:"mirror_branches"`
}

// ForkMain is the fork's copy of main, the base of the work branch.
func (c RepoConfig) ForkMain() string {
	return c.ForkRemote + "/" + c.MainBranch
}

// UpstreamMain is the upstream's main, the only source main is advanced from.
func (c RepoConfig) UpstreamMain() string {
	return c.UpstreamRemote + "/" + c.MainBranch
}

// Validate checks RepoConfig
func (c RepoConfig) Validate() error {
	switch {
	case c.ForkURL == "":
		return goerr.New("fork URL is required: set --fork-url or configure the fork remote",
			goerr.V("remote", c.ForkRemote), goerr.T(types.ErrTagInvalidConfig))
	case c.UpstreamURL == "":
		return goerr.New("upstream URL is required", goerr.T(types.ErrTagInvalidConfig))
	case c.ForkRemote == "" || c.UpstreamRemote == "":
		return goerr.New("remote names must not be empty", goerr.T(types.ErrTagInvalidConfig))
	case c.ForkRemote == c.UpstreamRemote:
		return goerr.New("fork and upstream remotes must differ",
			goerr.V("remote", c.ForkRemote), goerr.T(types.ErrTagInvalidConfig))
	case c.MainBranch == "" || c.WorkBranch == "":
		return goerr.New("branch names must not be empty", goerr.T(types.ErrTagInvalidConfig))
	case c.MainBranch == c.WorkBranch:
		return goerr.New("work branch must differ from main branch",
			goerr.V("branch", c.MainBranch), goerr.T(types.ErrTagInvalidConfig))
	}
	return nil
}

// DockerConfig describes the compose stack refreshed after the sync.
type DockerConfig struct {
	Profile       string        `json:"profile"`
	UIPort        int           `json:"ui_port"`
	ComposeFiles  []string      `json:"compose_files,omitempty"`
	RuntimeBranch RuntimeBranch `json:"runtime_branch"`
	Skip          bool          `json:"skip"`
}

// Validate checks DockerConfig
func (c DockerConfig) Validate() error {
	if c.Skip {
		return nil
	}
	if c.UIPort < 1 || c.UIPort > 65535 {
		return goerr.New("UI port out of range",
			goerr.V("port", c.UIPort), goerr.T(types.ErrTagInvalidConfig))
	}
	switch c.RuntimeBranch {
	case RuntimeBranchWork, RuntimeBranchMain:
	default:
		return goerr.New("unknown runtime branch policy",
			goerr.V("runtime_branch", c.RuntimeBranch), goerr.T(types.ErrTagInvalidConfig))
	}
	return nil
}

// ComposeOptions are the arguments shared by compose down and up.
type ComposeOptions struct {
	Dir     string
	Files   []string
	Profile string
}

// Plan is the immutable input of a sync run.
type Plan struct {
	Repo   RepoConfig   `json:"repo"`
	Docker DockerConfig `json:"docker"`
	DryRun bool         `json:"dry_run"`
}

// Validate checks both halves of the plan
func (p *Plan) Validate() error {
	if err := p.Repo.Validate(); err != nil {
		return err
	}
	return p.Docker.Validate()
}

// RuntimeBranchName resolves the runtime policy to a branch name.
func (p *Plan) RuntimeBranchName() string {
	if p.Docker.RuntimeBranch == RuntimeBranchMain {
		return p.Repo.MainBranch
	}
	return p.Repo.WorkBranch
}

// Compose returns compose options for the configured stack.
func (p *Plan) Compose() ComposeOptions {
	return ComposeOptions{
		Dir:     p.Repo.WorkDir,
		Files:   p.Docker.ComposeFiles,
		Profile: p.Docker.Profile,
	}
}
