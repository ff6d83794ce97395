package interfaces

import (
	"context"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent decides whether event starts a sync run
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) (model.TriggerOutcome, error)
}

// SyncTrigger schedules sync runs
type SyncTrigger interface {
	// Trigger requests a run. It returns false when a run is already
	// pending, in which case the request is absorbed by that run.
	Trigger(ctx context.Context, reason string) bool
}

// RunStatusProvider exposes the scheduler state
type RunStatusProvider interface {
	// Status returns the last finished run (nil before the first) and
	// whether a run is in progress
	Status() (*model.RunResult, bool)
}

// SyncUseCase runs the fork synchronization and runtime refresh workflow
type SyncUseCase interface {
	// Run executes the whole workflow. The returned result is never nil,
	// even when err is not nil.
	Run(ctx context.Context, plan *model.Plan) (*model.RunResult, error)

	// Check verifies preconditions and reports repository state without mutating it
	Check(ctx context.Context, plan *model.Plan) (*model.CheckReport, error)

	// Steps lists the steps Run would execute for plan, in order
	Steps(plan *model.Plan) []string
}

// ReportUseCase delivers a finished run to the configured sinks
type ReportUseCase interface {
	// Publish sends result to every sink. A failing sink does not stop the
	// others; their errors are joined in the returned error.
	Publish(ctx context.Context, result *model.RunResult) error
}
