package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tagrelease/pkg/utils/errutil"
)

// Runner runs chat handlers in the background after the request is acknowledged
// and keeps track of them for graceful shutdown.
type Runner struct {
	wg sync.WaitGroup
}

// NewRunner creates a Runner
func NewRunner() *Runner {
	return &Runner{}
}

// Dispatch executes task in a new goroutine.
//
// The task receives a background context that keeps the logger of ctx (with a task_id
// attribute) but is not cancelled with ctx. Returned errors and panics are handled by errutil.
func (r *Runner) Dispatch(ctx context.Context, task func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				err := goerr.New("panic in async task",
					goerr.V("recover", rec),
					goerr.V("stack", string(debug.Stack())))
				errutil.Handle(newCtx, "Panic in async task", err)
			}
		}()

		if err := task(newCtx); err != nil {
			errutil.Handle(newCtx, "Error in async task", err)
		}
	}()
}

// Wait blocks until all dispatched tasks finish or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async tasks did not finish in time")
	}
}

func newBackgroundContext(ctx context.Context) context.Context {
	logger := ctxlog.From(ctx).With("task_id", uuid.NewString())
	return ctxlog.With(context.Background(), logger)
}
