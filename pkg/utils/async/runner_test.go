package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagrelease/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func newLoggedContext(buf *safeBuffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.With(context.Background(), logger)
}

func TestRunner_Dispatch(t *testing.T) {
	t.Run("executes task asynchronously", func(t *testing.T) {
		runner := async.NewRunner()
		executed := make(chan struct{})

		runner.Dispatch(context.Background(), func(ctx context.Context) error {
			close(executed)
			return nil
		})

		select {
		case <-executed:
		case <-time.After(time.Second):
			t.Fatal("task did not run")
		}
	})

	t.Run("logs returned errors", func(t *testing.T) {
		buf := &safeBuffer{}
		runner := async.NewRunner()

		runner.Dispatch(newLoggedContext(buf), func(ctx context.Context) error {
			return errors.New("task failed")
		})
		gt.NoError(t, runner.Wait(context.Background()))

		gt.True(t, strings.Contains(buf.String(), "Error in async task"))
		gt.True(t, strings.Contains(buf.String(), "task failed"))
	})

	t.Run("recovers from panic with stack trace", func(t *testing.T) {
		buf := &safeBuffer{}
		runner := async.NewRunner()

		runner.Dispatch(newLoggedContext(buf), func(ctx context.Context) error {
			panic("test panic with stack")
		})
		gt.NoError(t, runner.Wait(context.Background()))

		out := buf.String()
		gt.True(t, strings.Contains(out, "Panic in async task"))
		gt.True(t, strings.Contains(out, "test panic with stack"))
		gt.True(t, strings.Contains(out, "runner_test.go"))
	})

	t.Run("adds task id to logger", func(t *testing.T) {
		buf := &safeBuffer{}
		runner := async.NewRunner()

		runner.Dispatch(newLoggedContext(buf), func(ctx context.Context) error {
			ctxlog.From(ctx).Info("inside task")
			return nil
		})
		gt.NoError(t, runner.Wait(context.Background()))

		gt.True(t, strings.Contains(buf.String(), "task_id="))
	})

	t.Run("task context is not cancelled with request context", func(t *testing.T) {
		runner := async.NewRunner()
		ctx, cancel := context.WithCancel(context.Background())

		var taskCtxErr error
		runner.Dispatch(ctx, func(newCtx context.Context) error {
			cancel()
			taskCtxErr = newCtx.Err()
			return nil
		})
		gt.NoError(t, runner.Wait(context.Background()))

		gt.NoError(t, taskCtxErr)
	})
}

func TestRunner_Wait(t *testing.T) {
	t.Run("waits for running tasks", func(t *testing.T) {
		runner := async.NewRunner()
		var mu sync.Mutex
		finished := 0

		for i := 0; i < 5; i++ {
			runner.Dispatch(context.Background(), func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				finished++
				mu.Unlock()
				return nil
			})
		}

		gt.NoError(t, runner.Wait(context.Background()))
		gt.Number(t, finished).Equal(5)
	})

	t.Run("gives up when context is done", func(t *testing.T) {
		runner := async.NewRunner()
		release := make(chan struct{})
		defer close(release)

		runner.Dispatch(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		gt.Error(t, runner.Wait(ctx))
	})
}
