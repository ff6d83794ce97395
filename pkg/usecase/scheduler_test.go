package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/forksync/pkg/domain/interfaces"
	"github.com/m-mizutani/forksync/pkg/domain/model"
	"github.com/m-mizutani/forksync/pkg/domain/types"
	"github.com/m-mizutani/forksync/pkg/usecase"
)

// blockingSync is a SyncUseCase whose runs wait for a release signal
type blockingSync struct {
	started chan struct{}
	release chan error
	runs    atomic.Int32
}

func newBlockingSync() *blockingSync {
	return &blockingSync{
		started: make(chan struct{}, 8),
		release: make(chan error),
	}
}

func (b *blockingSync) Run(ctx context.Context, plan *model.Plan) (*model.RunResult, error) {
	b.runs.Add(1)
	b.started <- struct{}{}
	result := &model.RunResult{ID: types.NewRunID()}
	select {
	case err := <-b.release:
		if err != nil {
			result.Fail(err)
			return result, err
		}
		result.Success = true
		return result, nil
	case <-ctx.Done():
		result.Fail(ctx.Err())
		return result, ctx.Err()
	}
}

func (b *blockingSync) Check(ctx context.Context, plan *model.Plan) (*model.CheckReport, error) {
	return &model.CheckReport{}, nil
}

func (b *blockingSync) Steps(plan *model.Plan) []string { return nil }

func waitStarted(t *testing.T, b *blockingSync) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not start")
	}
}

func TestScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncUC := newBlockingSync()
	sink := &mockSink{name: "test"}
	handled := make(chan error, 8)
	s := usecase.NewScheduler(syncUC, usecase.NewReport([]interfaces.ResultSink{sink}), testPlan(),
		usecase.WithResultHandler(func(ctx context.Context, result *model.RunResult, err error) {
			handled <- err
		}))

	last, running := s.Status()
	gt.Value(t, last).Nil()
	gt.False(t, running)

	gt.True(t, s.Trigger(ctx, "first"))
	gt.False(t, s.Trigger(ctx, "coalesced"))

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	waitStarted(t, syncUC)
	_, running = s.Status()
	gt.True(t, running)

	// one follow-up while running, the rest coalesce into it
	gt.True(t, s.Trigger(ctx, "during run"))
	gt.False(t, s.Trigger(ctx, "during run again"))

	syncUC.release <- nil
	gt.NoError(t, <-handled)

	waitStarted(t, syncUC)
	runErr := errors.New("compose up failed")
	syncUC.release <- runErr
	gt.Equal(t, <-handled, runErr)

	last, _ = s.Status()
	gt.Value(t, last).NotNil()
	gt.False(t, last.Success)
	gt.Equal(t, syncUC.runs.Load(), int32(2))

	sink.mu.Lock()
	gt.A(t, sink.received).Length(2)
	sink.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_CancelStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	syncUC := newBlockingSync()
	handled := make(chan error, 1)
	s := usecase.NewScheduler(syncUC, usecase.NewReport(nil), testPlan(),
		usecase.WithResultHandler(func(ctx context.Context, result *model.RunResult, err error) {
			handled <- err
		}))

	s.Trigger(ctx, "start")
	go s.Start(ctx)
	waitStarted(t, syncUC)

	cancel()
	gt.True(t, errors.Is(<-handled, context.Canceled))
}
