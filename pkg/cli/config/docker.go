package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Docker holds the compose stack configuration
type Docker struct {
	Profile       string
	UIPort        int64
	ComposeFiles  []string
	RuntimeBranch string
	Skip          bool
}

// Flags returns CLI flags for the runtime refresh
func (c *Docker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "docker-profile",
			Usage:       "Compose profile to activate",
			Value:       "full",
			Destination: &c.Profile,
			Sources:     cli.EnvVars("DOCKER_PROFILE"),
		},
		&cli.Int64Flag{
			Name:        "ui-port",
			Usage:       "Host port whose holder containers are removed before compose up",
			Value:       3737,
			Destination: &c.UIPort,
			Sources:     cli.EnvVars("UI_PORT"),
		},
		&cli.StringSliceFlag{
			Name:        "compose-file",
			Usage:       "Compose file, repeatable (default: compose's own lookup)",
			Destination: &c.ComposeFiles,
			Sources:     cli.EnvVars("FORKSYNC_COMPOSE_FILE"),
		},
		&cli.StringFlag{
			Name:        "runtime-branch",
			Usage:       "Branch the stack is served from (work, main)",
			Value:       string(model.RuntimeBranchWork),
			Destination: &c.RuntimeBranch,
			Sources:     cli.EnvVars("FORKSYNC_RUNTIME_BRANCH"),
		},
		&cli.BoolFlag{
			Name:        "skip-runtime",
			Usage:       "Only sync branches, leave containers alone",
			Destination: &c.Skip,
			Sources:     cli.EnvVars("FORKSYNC_SKIP_RUNTIME"),
		},
	}
}

// Build converts the flags into model.DockerConfig
func (c *Docker) Build() model.DockerConfig {
	return model.DockerConfig{
		Profile:       c.Profile,
		UIPort:        int(c.UIPort),
		ComposeFiles:  c.ComposeFiles,
		RuntimeBranch: model.RuntimeBranch(c.RuntimeBranch),
		Skip:          c.Skip,
	}
}
