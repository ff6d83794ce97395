package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Group runs handlers concurrently and waits for all of them.
//
// Handlers receive a background context that keeps the caller's logger but
// not its cancellation, so a run interrupted by a signal still delivers its
// result. Panics are recovered, logged with a stack trace and reported as
// errors from Wait.
type Group struct {
	ctx  context.Context
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewGroup creates a Group detached from ctx cancellation
func NewGroup(ctx context.Context) *Group {
	return &Group{ctx: newBackgroundContext(ctx)}
}

// Go starts handler in a new goroutine
func (g *Group) Go(handler func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(g.ctx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				g.add(goerr.New("panic in async handler", goerr.V("recover", r)))
			}
		}()

		if err := handler(g.ctx); err != nil {
			g.add(err)
		}
	}()
}

func (g *Group) add(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs = append(g.errs, err)
}

// Wait blocks until every handler returned and joins their errors
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

// newBackgroundContext creates a new background context preserving the
// ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
