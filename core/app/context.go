package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailkit/core/binder"
	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/response"
)

// Context is the per-request context passed to app handlers.
// It implements handler.Context and component.Resolver, so handler
// dependencies can be resolved straight from it:
//
//	m, err := component.Resolve[*mail.Mail](ctx)
type Context struct {
	w   *responseWriter
	r   *http.Request
	app *App
}

var _ component.Resolver = (*Context)(nil)

func newContext(w *responseWriter, r *http.Request, a *App) *Context {
	return &Context{w: w, r: r, app: a}
}

func (c *Context) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *Context) Err() error                  { return c.r.Context().Err() }
func (c *Context) Value(key any) any           { return c.r.Context().Value(key) }

// Request returns the request. After SetValue it carries the new value in its context.
func (c *Context) Request() *http.Request { return c.r }

func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns a path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.r, key)
}

// SetValue stores a value in the request context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// Lookup implements component.Resolver against the app container.
func (c *Context) Lookup(t reflect.Type) (any, error) {
	return c.app.container.Lookup(t)
}

// Logger returns the app logger.
func (c *Context) Logger() *slog.Logger {
	return c.app.logger
}

// Query returns the first value of a query parameter.
func (c *Context) Query(key string) string {
	return c.r.URL.Query().Get(key)
}

// QueryAll returns every value of a repeatable query parameter in request order.
func (c *Context) QueryAll(key string) []string {
	return c.r.URL.Query()[key]
}

// Bind decodes the JSON body into v and validates it.
// Errors are HTTP errors: 415 for a wrong content type, 413 for an oversized
// body, 422 for failed validation and 400 for anything else.
func (c *Context) Bind(v any) error {
	err := binder.Bind(c.r, v, binder.JSONWithLimit(c.app.bodyLimit))
	if err == nil {
		return nil
	}

	var verr *binder.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for field, rule := range verr.Fields {
			details[field] = rule
		}
		return response.ErrUnprocessableEntity.WithMessage(verr.Error()).WithDetails(details)
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrRequestEntityTooLarge.WithError(err)
	default:
		return response.ErrBadRequest.WithMessage(err.Error())
	}
}
