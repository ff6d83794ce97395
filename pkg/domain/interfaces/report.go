package interfaces

import (
	"context"

	"github.com/m-mizutani/forksync/pkg/domain/model"
)

// ResultSink receives the result of a finished run (chat notification,
// history store, report archive).
type ResultSink interface {
	Name() string
	Send(ctx context.Context, result *model.RunResult) error
}

// StepObserver is notified as workflow steps start and finish.
type StepObserver interface {
	StepStarted(name, description string)
	StepFinished(step model.Step)
}
