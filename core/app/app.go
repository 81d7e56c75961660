// Package app wires routes, middleware and components into an http.Handler.
//
// An App owns a component container and a chi router. Every request gets a
// *Context that can resolve components by type:
//
//	a, err := app.New(
//		app.WithComponents(
//			settings.Component(s),
//			mail.Component(smtp.NewTransport),
//		),
//		app.WithRoutes(
//			app.Post("/", app.Inject(sendWelcome)),
//		),
//	)
//	if err != nil {
//		return err
//	}
//	return a.Run(ctx, server.DefaultConfig())
//
// New builds every component before returning, so invalid settings fail at
// startup instead of on the first request.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailkit/core/binder"
	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/handler"
	"github.com/dmitrymomot/mailkit/core/logger"
	"github.com/dmitrymomot/mailkit/core/response"
	"github.com/dmitrymomot/mailkit/core/server"
)

type mount struct {
	pattern string
	handler http.Handler
}

// App is an http.Handler serving the registered routes.
type App struct {
	router       chi.Router
	container    *component.Container
	logger       *slog.Logger
	errorHandler handler.ErrorHandler[*Context]
	middlewares  []handler.Middleware[*Context]
	routes       []Route
	mounts       []mount
	components   []component.Component
	bodyLimit    int64
}

// Option configures an App.
type Option func(*App)

// WithRoutes adds routes.
func WithRoutes(routes ...Route) Option {
	return func(a *App) { a.routes = append(a.routes, routes...) }
}

// WithComponents registers components with the app container in order.
func WithComponents(components ...component.Component) Option {
	return func(a *App) { a.components = append(a.components, components...) }
}

// WithMiddleware appends middleware. The first one added is the outermost.
func WithMiddleware(middlewares ...handler.Middleware[*Context]) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, middlewares...) }
}

// WithLogger sets the app logger. It is also supplied to components as *slog.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler replaces the default plain text error handler.
func WithErrorHandler(h handler.ErrorHandler[*Context]) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithMount serves a plain http.Handler under pattern, e.g. promhttp at "/metrics".
// Mounted handlers bypass app middleware and the error handler.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) { a.mounts = append(a.mounts, mount{pattern: pattern, handler: h}) }
}

// WithBodyLimit sets the maximum JSON body size accepted by Context.Bind.
func WithBodyLimit(limit int64) Option {
	return func(a *App) {
		if limit > 0 {
			a.bodyLimit = limit
		}
	}
}

// New creates an App, registers its components and builds them.
func New(opts ...Option) (*App, error) {
	a := &App{
		router:       chi.NewRouter(),
		container:    component.New(),
		logger:       logger.Discard(),
		errorHandler: response.ErrorHandler[*Context],
		bodyLimit:    binder.DefaultMaxJSONSize,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := component.Supply(a.container, a.logger); err != nil {
		return nil, errors.Join(ErrStartup, err)
	}
	if err := a.container.Register(a.components...); err != nil {
		return nil, errors.Join(ErrStartup, err)
	}
	if err := a.container.Build(); err != nil {
		return nil, errors.Join(ErrStartup, err)
	}

	for _, rt := range a.routes {
		if err := rt.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s %q", err, rt.Method, rt.Pattern)
		}
		a.router.Method(rt.Method, rt.Pattern, a.handle(rt.Handler))
	}
	for _, m := range a.mounts {
		if m.handler == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilMount, m.pattern)
		}
		a.router.Mount(m.pattern, m.handler)
	}

	a.router.NotFound(a.handle(func(*Context) handler.Response {
		return response.Error(response.ErrNotFound)
	}))
	a.router.MethodNotAllowed(a.handle(func(*Context) handler.Response {
		return response.Error(response.ErrMethodNotAllowed)
	}))

	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Container returns the app component container.
func (a *App) Container() *component.Container {
	return a.container
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run serves the app until ctx is canceled, then shuts the server down and
// releases components, which drains background mail sends.
func (a *App) Run(ctx context.Context, cfg server.Config) error {
	srv, err := server.NewFromConfig(cfg, server.WithLogger(a.logger))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, a))
	runErr := g.Wait()

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = server.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown releases every built component in reverse construction order.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.container.Shutdown(ctx); err != nil {
		a.logger.ErrorContext(ctx, "component shutdown failed", logger.Error(err))
		return err
	}
	return nil
}

func (a *App) handle(h handler.HandlerFunc[*Context]) http.HandlerFunc {
	h = handler.Chain(h, a.middlewares...)

	return func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w}
		ctx := newContext(ww, r, a)

		defer func() {
			if p := recover(); p != nil {
				a.fail(ctx, &PanicError{Value: p, Stack: debug.Stack()})
			}
		}()

		resp := h(ctx)
		if resp == nil {
			a.fail(ctx, ErrNilResponse)
			return
		}
		if err := resp(ww, ctx.Request()); err != nil {
			a.fail(ctx, err)
		}
	}
}

func (a *App) fail(ctx *Context, err error) {
	req := ctx.Request()

	httpErr := response.AsHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		attrs := []slog.Attr{
			logger.Error(err),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
		}
		var pe *PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.String("stack", string(pe.Stack)))
		}
		a.logger.LogAttrs(req.Context(), slog.LevelError, "request failed", attrs...)
	}

	if ctx.w.written {
		return
	}
	a.errorHandler(ctx, err)
}
