package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitWithTimeout when the timeout passes first.
var ErrTimeout = errors.New("async: timed out waiting for result")

// Future is the pending result of a function started by Exec.
type Future struct {
	err  error
	done chan struct{}
}

// Resolved returns a Future that has already completed with err.
func Resolved(err error) *Future {
	f := &Future{err: err, done: make(chan struct{})}
	close(f.done)
	return f
}

// Await blocks until the function returns or ctx is done.
// If ctx ends first, its error is returned and the function keeps running.
func (f *Future) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitWithTimeout is like Await with a timeout instead of a context.
func (f *Future) AwaitWithTimeout(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.err
	case <-timer.C:
		return ErrTimeout
	}
}

// Done is closed when the function has returned.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the function has returned.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec runs fn(ctx, param) in a new goroutine.
// If ctx is already done, fn is not called and the Future holds ctx.Err().
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.err = fn(ctx, param)
	}()

	return f
}

// ExecAll waits for every future and joins their errors.
func ExecAll(ctx context.Context, futures ...*Future) error {
	errs := make([]error, 0, len(futures))
	for _, f := range futures {
		if err := f.Await(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
