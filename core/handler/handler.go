// Package handler defines the request-processing contract shared by the app,
// middleware and response packages: a context type, a response renderer and
// typed handler/middleware signatures.
package handler

import (
	"context"
	"net/http"
)

// Context is the per-request context handed to handlers.
// It is a context.Context bound to the request lifetime.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}

// Response renders an HTTP response.
// Rendering errors are passed to the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a type-safe request handler for context type C.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler handles errors returned by handlers or responses.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a handler to add cross-cutting behavior.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain applies middlewares to h so that the first middleware is outermost.
func Chain[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
