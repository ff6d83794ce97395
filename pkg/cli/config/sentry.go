package config

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/forksync/pkg/domain/types"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN, aborted runs are reported when set",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("FORKSYNC_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("FORKSYNC_SENTRY_ENV"),
		},
	}
}

// Enabled reports whether a DSN is configured
func (c *Sentry) Enabled() bool {
	return c.DSN != ""
}

// Configure initializes the global Sentry hub. It does nothing without DSN.
func (c *Sentry) Configure() error {
	if !c.Enabled() {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "forksync@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry", goerr.T(types.ErrTagInvalidConfig))
	}
	return nil
}

// Capture reports err with its abort reason and waits for delivery
func (c *Sentry) Capture(ctx context.Context, err error, runID string) {
	if !c.Enabled() || err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("abort_reason", types.AbortReason(err))
		scope.SetTag("run_id", runID)
		if e := goerr.Unwrap(err); e != nil {
			scope.SetContext("goerr", sentry.Context(e.Values()))
		}
	})

	evID := hub.CaptureException(err)
	if !hub.Flush(2 * time.Second) {
		ctxlog.From(ctx).Warn("Sentry flush timed out")
	}
	if evID != nil {
		ctxlog.From(ctx).Info("Error reported to Sentry", "event_id", *evID)
	}
}
