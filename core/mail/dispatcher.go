package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/mailkit/core/logger"
	"github.com/dmitrymomot/mailkit/pkg/async"
)

// ErrorHook is called after a background send fails.
// ctx carries the values of the context passed to Dispatch.
type ErrorHook func(ctx context.Context, msg Message, err error)

// Dispatcher sends messages in the background so handlers can respond
// before delivery finishes.
//
// Every Dispatch starts one goroutine. A send keeps the values of the
// dispatching context (request ID, logger attributes) but not its
// cancellation, and is bounded by the dispatcher timeout. Failed sends are
// logged and reported to the error hook; they are not retried.
type Dispatcher struct {
	mail    *Mail
	logger  *slog.Logger
	timeout time.Duration
	onError ErrorHook

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger that reports background send failures.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithErrorHook sets a function called for every failed background send.
func WithErrorHook(hook ErrorHook) DispatcherOption {
	return func(d *Dispatcher) { d.onError = hook }
}

// WithSendTimeout overrides MAIL_TIMEOUT for background sends. Zero disables the timeout.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// NewDispatcher creates a dispatcher sending through m.
func NewDispatcher(m *Mail, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mail:    m,
		logger:  logger.Discard(),
		timeout: m.Config().Timeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("mail_dispatcher"))
	return d
}

// Dispatch sends msg in the background and returns immediately.
// The returned future completes with the send result; callers may ignore it.
// After Shutdown, Dispatch returns a future holding ErrDispatcherStopped.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) *async.Future {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return async.Resolved(ErrDispatcherStopped)
	}
	d.wg.Add(1)
	d.mu.Unlock()

	sendCtx := context.WithoutCancel(ctx)
	return async.Exec(sendCtx, msg, func(ctx context.Context, msg Message) error {
		defer d.wg.Done()

		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		err := d.mail.Send(ctx, msg)
		if err != nil {
			d.logger.ErrorContext(ctx, "background mail send failed",
				logger.Error(err),
				logger.Recipients(len(msg.SendTo())),
			)
			if d.onError != nil {
				d.onError(ctx, msg, err)
			}
		}
		return err
	})
}

// Shutdown stops accepting messages and waits for in-flight sends until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.logger.WarnContext(ctx, "mail dispatcher shutdown timed out")
		return ctx.Err()
	}
}
