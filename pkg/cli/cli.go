package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var logger *slog.Logger

	app := &cli.Command{
		Name:           "forksync",
		Usage:          "Sync a personal fork with upstream and refresh its Docker Compose stack",
		Version:        types.Version,
		Flags:          loggerCfg.Flags(),
		DefaultCommand: "sync",
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdSync(),
			cmdCheck(),
			cmdConfig(),
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "forksync: %s (%s)\n", err.Error(), types.AbortReason(err))
		return err
	}

	return nil
}
