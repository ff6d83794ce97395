package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/utils/async"
)

// DefaultSinkTimeout bounds each sink delivery
const DefaultSinkTimeout = 10 * time.Second

type reportUseCase struct {
	sinks   []interfaces.ResultSink
	timeout time.Duration
}

// ReportOption configures the report use case
type ReportOption func(*reportUseCase)

// WithSinkTimeout overrides DefaultSinkTimeout
func WithSinkTimeout(d time.Duration) ReportOption {
	return func(uc *reportUseCase) {
		uc.timeout = d
	}
}

// NewReport creates a new instance of ReportUseCase
func NewReport(sinks []interfaces.ResultSink, opts ...ReportOption) interfaces.ReportUseCase {
	uc := &reportUseCase{
		sinks:   sinks,
		timeout: DefaultSinkTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *reportUseCase) Publish(ctx context.Context, result *model.RunResult) error {
	if len(uc.sinks) == 0 {
		return nil
	}

	g := async.NewGroup(ctx)
	for _, sink := range uc.sinks {
		g.Go(func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			logger := ctxlog.From(ctx).With("sink", sink.Name(), "run_id", result.ID.String())
			if err := sink.Send(ctx, result); err != nil {
				logger.Warn("Failed to deliver run result", "error", err)
				return goerr.Wrap(err, "failed to deliver run result", goerr.V("sink", sink.Name()))
			}
			logger.Debug("Run result delivered")
			return nil
		})
	}
	return g.Wait()
}
