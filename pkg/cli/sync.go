package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/usecase"
	"github.com/m-mizutani/forksync/pkg/utils/console"
	"github.com/m-mizutani/forksync/pkg/utils/safe"
)

func cmdSync() *cli.Command {
	var (
		planCfg   config.Plan
		notifyCfg config.Notify
		sentryCfg config.Sentry
		dryRun    bool
	)

	flags := append(planCfg.Flags(), notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Print the planned steps without running them",
		Destination: &dryRun,
		Sources:     cli.EnvVars("FORKSYNC_DRY_RUN"),
	})

	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"s"},
		Usage:   "Sync main with upstream, update the work branch and refresh the stack",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			plan, err := planCfg.Build(ctx, c)
			if err != nil {
				return err
			}
			plan.DryRun = dryRun

			if err := plan.Validate(); err != nil {
				return err
			}
			printer := console.New(os.Stdout)

			if plan.DryRun {
				uc := usecase.NewSync(nil, nil)
				printer.Plan(uc.Steps(plan), func(name string) string {
					return usecase.DescribeStep(plan, name)
				})
				return nil
			}

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			return runSync(ctx, plan, printer, &notifyCfg, &sentryCfg)
		},
	}
}

func runSync(ctx context.Context, plan *model.Plan, printer *console.Printer, notifyCfg *config.Notify, sentryCfg *config.Sentry) error {
	logger := ctxlog.From(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	vcs, ctr, err := newBackends(plan)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, ctr)

	sinks, closers, err := notifyCfg.Sinks(ctx)
	for _, closer := range closers {
		defer safe.Close(ctx, closer)
	}
	if err != nil {
		return err
	}

	logger.Info("Starting fork sync",
		"work_dir", plan.Repo.WorkDir,
		"main_branch", plan.Repo.MainBranch,
		"work_branch", plan.Repo.WorkBranch,
		"runtime_branch", plan.RuntimeBranchName(),
		"skip_runtime", plan.Docker.Skip,
	)

	uc := usecase.NewSync(vcs, ctr, usecase.WithObserver(printer))
	result, runErr := uc.Run(ctx, plan)
	printer.Summary(result)

	if err := usecase.NewReport(sinks).Publish(ctx, result); err != nil {
		logger.Warn("Some sinks did not receive the run result", "error", err)
	}

	if runErr != nil {
		sentryCfg.Capture(ctx, runErr, result.ID.String())
		return runErr
	}
	return nil
}
