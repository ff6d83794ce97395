package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// Plan groups the configuration every command needs to build a model.Plan
type Plan struct {
	Repo   Repo
	Docker Docker
	File   File
}

// Flags returns CLI flags of all groups
func (c *Plan) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.File.Flags()...)
	flags = append(flags, c.Repo.Flags()...)
	flags = append(flags, c.Docker.Flags()...)
	return flags
}

// Build applies the config file to cmd and returns the resulting plan. The
// plan is not validated here.
func (c *Plan) Build(ctx context.Context, cmd *cli.Command) (*model.Plan, error) {
	if err := c.File.Apply(ctx, cmd); err != nil {
		return nil, err
	}

	repo, err := c.Repo.Build(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Plan{
		Repo:   repo,
		Docker: c.Docker.Build(),
	}, nil
}
