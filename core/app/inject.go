package app

import (
	"fmt"

	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/handler"
	"github.com/dmitrymomot/mailkit/core/response"
)

// Inject resolves a dependency of type T for every request and passes it to fn.
// A dependency that cannot be resolved becomes a 500 response.
//
//	app.Post("/", app.Inject(func(ctx *app.Context, m *mail.Mail) handler.Response {
//		...
//	}))
func Inject[T any](fn func(ctx *Context, dep T) handler.Response) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		dep, err := component.Resolve[T](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		return fn(ctx, dep)
	}
}

// Inject2 is Inject for two dependencies.
func Inject2[T1, T2 any](fn func(ctx *Context, d1 T1, d2 T2) handler.Response) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		d1, err := component.Resolve[T1](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		d2, err := component.Resolve[T2](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		return fn(ctx, d1, d2)
	}
}

// Inject3 is Inject for three dependencies.
func Inject3[T1, T2, T3 any](fn func(ctx *Context, d1 T1, d2 T2, d3 T3) handler.Response) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		d1, err := component.Resolve[T1](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		d2, err := component.Resolve[T2](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		d3, err := component.Resolve[T3](ctx)
		if err != nil {
			return resolveFailed(err)
		}
		return fn(ctx, d1, d2, d3)
	}
}

func resolveFailed(err error) handler.Response {
	return response.Error(fmt.Errorf("%w: %w", ErrResolveFailed, err))
}
