package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/cli/config"
	"github.com/m-mizutani/forksync/pkg/domain/model"
)

func cmdConfig() *cli.Command {
	var planCfg config.Plan

	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration with secrets masked",
		Flags: planCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			plan, err := planCfg.Build(ctx, c)
			if err != nil {
				return err
			}
			printConfig(os.Stdout, plan)
			return nil
		},
	}
}

// printConfig writes plan as one JSON object, passed through the same
// masking filter as the logs.
func printConfig(w io.Writer, plan *model.Plan) {
	filter := config.MaskFilter()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey, slog.LevelKey, slog.MessageKey:
					return slog.Attr{}
				}
			}
			return filter(groups, a)
		},
	})
	slog.New(handler).Info("", "config", plan)
}
