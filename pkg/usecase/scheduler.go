package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// ResultHandler is called after every scheduled run, before the next one
type ResultHandler func(ctx context.Context, result *model.RunResult, err error)

// Scheduler executes sync runs one at a time. Triggers arriving during a run
// collapse into a single follow-up run.
type Scheduler struct {
	syncUC   interfaces.SyncUseCase
	reportUC interfaces.ReportUseCase
	plan     *model.Plan
	onResult ResultHandler

	pending chan string

	mu      sync.Mutex
	running bool
	last    *model.RunResult
}

// SchedulerOption configures Scheduler
type SchedulerOption func(*Scheduler)

// WithResultHandler registers h, e.g. for error reporting
func WithResultHandler(h ResultHandler) SchedulerOption {
	return func(s *Scheduler) {
		s.onResult = h
	}
}

// NewScheduler creates a Scheduler running plan
func NewScheduler(syncUC interfaces.SyncUseCase, reportUC interfaces.ReportUseCase, plan *model.Plan, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		syncUC:   syncUC,
		reportUC: reportUC,
		plan:     plan,
		pending:  make(chan string, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Trigger(ctx context.Context, reason string) bool {
	select {
	case s.pending <- reason:
		ctxlog.From(ctx).Info("Sync run queued", "reason", reason)
		return true
	default:
		ctxlog.From(ctx).Info("Sync run already pending", "reason", reason)
		return false
	}
}

func (s *Scheduler) Status() (*model.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.running
}

// Start processes triggers until ctx is cancelled. Cancelling ctx also
// cancels the run in progress.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-s.pending:
			s.runOnce(ctx, reason)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, reason string) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	logger := ctxlog.From(ctx)
	logger.Info("Starting scheduled sync", "reason", reason)

	result, err := s.syncUC.Run(ctx, s.plan)
	if err := s.reportUC.Publish(ctx, result); err != nil {
		logger.Warn("Some sinks did not receive the run result", "error", err)
	}

	s.mu.Lock()
	s.running = false
	s.last = result
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(ctx, result, err)
	}
}
