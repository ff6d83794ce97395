package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	controller "github.com/m-mizutani/forksync/pkg/controller/http"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/usecase"
	"github.com/m-mizutani/forksync/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		planCfg   config.Plan
		notifyCfg config.Notify
		sentryCfg config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, planCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run syncs when GitHub reports a new upstream main",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			plan, err := planCfg.Build(ctx, c)
			if err != nil {
				return err
			}
			if err := plan.Validate(); err != nil {
				return err
			}
			if err := sentryCfg.Configure(); err != nil {
				return err
			}

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

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := usecase.NewScheduler(
				usecase.NewSync(vcs, ctr),
				usecase.NewReport(sinks),
				plan,
				usecase.WithResultHandler(func(ctx context.Context, result *model.RunResult, err error) {
					if err != nil {
						sentryCfg.Capture(ctx, err, result.ID.String())
					}
				}),
			)

			var webhookOpts []usecase.WebhookOption
			if githubCfg.Repository != "" {
				webhookOpts = append(webhookOpts, usecase.WithRepository(githubCfg.Repository))
			}
			webhookUC := usecase.NewWebhook(scheduler, plan.Repo.MainBranch, webhookOpts...)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithRunStatus(scheduler),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			schedulerDone := make(chan struct{})
			go func() {
				scheduler.Start(ctx)
				close(schedulerDone)
			}()
			if serverCfg.SyncOnStart {
				scheduler.Trigger(ctx, "startup")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
				close(serverErr)
			}()

			select {
			case <-ctx.Done():
				logger.Info("Signal received, shutting down...")
			case err := <-serverErr:
				if err != nil {
					stop()
					<-schedulerDone
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			<-schedulerDone

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
