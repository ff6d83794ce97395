package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	"github.com/m-mizutani/forksync/pkg/usecase"
	"github.com/m-mizutani/forksync/pkg/utils/console"
	"github.com/m-mizutani/forksync/pkg/utils/safe"
)

func cmdCheck() *cli.Command {
	var planCfg config.Plan

	return &cli.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Verify tools and repository state without changing anything",
		Flags:   planCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			plan, err := planCfg.Build(ctx, c)
			if err != nil {
				return err
			}

			vcs, ctr, err := newBackends(plan)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, ctr)

			report, err := usecase.NewSync(vcs, ctr).Check(ctx, plan)
			if err != nil {
				return err
			}
			console.New(os.Stdout).Check(report)
			return nil
		},
	}
}
