package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/app"
	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/handler"
	"github.com/dmitrymomot/mailkit/core/response"
	"github.com/dmitrymomot/mailkit/core/server"
)

type greeter struct{ greeting string }

func greeterComponent(greeting string) component.Component {
	return component.ComponentFunc(func(c *component.Container) error {
		return component.Provide(c, func(component.Resolver) (*greeter, error) {
			return &greeter{greeting: greeting}, nil
		})
	})
}

func serve(t *testing.T, a http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func TestApp_RoutesAndParams(t *testing.T) {
	t.Parallel()

	a := app.MustNew(app.WithRoutes(
		app.Get("/hello/{name}", func(ctx *app.Context) handler.Response {
			return response.String("hello " + ctx.Param("name"))
		}),
		app.NewRoute("/", func(ctx *app.Context) handler.Response {
			return response.String(strings.Join(ctx.QueryAll("email"), ","))
		}, "post"),
	))

	rec := serve(t, a, http.MethodGet, "/hello/jane", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello jane", rec.Body.String())

	rec = serve(t, a, http.MethodPost, "/?email=a@example.com&email=b@example.com", "")
	assert.Equal(t, "a@example.com,b@example.com", rec.Body.String())
}

func TestApp_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	a := app.MustNew(app.WithRoutes(app.Post("/", func(*app.Context) handler.Response {
		return response.NoContent()
	})))

	rec := serve(t, a, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", rec.Body.String())

	rec = serve(t, a, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApp_ErrorsGoThroughErrorHandler(t *testing.T) {
	t.Parallel()

	var handled []error
	a := app.MustNew(
		app.WithErrorHandler(func(ctx *app.Context, err error) {
			handled = append(handled, err)
			response.JSONErrorHandler(ctx, err)
		}),
		app.WithRoutes(
			app.Get("/nil", func(*app.Context) handler.Response { return nil }),
			app.Get("/panic", func(*app.Context) handler.Response { panic("boom") }),
			app.Get("/error", func(*app.Context) handler.Response {
				return response.Error(response.ErrBadGateway.WithMessage("relay down"))
			}),
		),
	)

	rec := serve(t, a, http.MethodGet, "/nil", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(t, a, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(t, a, http.MethodGet, "/error", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"code":"bad_gateway","message":"relay down"}`, rec.Body.String())

	require.Len(t, handled, 3)
	assert.ErrorIs(t, handled[0], app.ErrNilResponse)
	var pe *app.PanicError
	require.ErrorAs(t, handled[1], &pe)
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestApp_ServerErrorsAreLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := app.MustNew(
		app.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		app.WithRoutes(
			app.Get("/bad", func(*app.Context) handler.Response { return response.Error(response.ErrBadRequest) }),
			app.Get("/fail", func(*app.Context) handler.Response { return response.Error(errors.New("smtp down")) }),
		),
	)

	serve(t, a, http.MethodGet, "/bad", "")
	assert.Empty(t, buf.String())

	serve(t, a, http.MethodGet, "/fail", "")
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "smtp down")
}

func TestApp_Inject(t *testing.T) {
	t.Parallel()

	a := app.MustNew(
		app.WithComponents(greeterComponent("hi")),
		app.WithRoutes(
			app.Get("/one", app.Inject(func(ctx *app.Context, g *greeter) handler.Response {
				return response.String(g.greeting)
			})),
			app.Get("/two", app.Inject2(func(ctx *app.Context, g *greeter, l *slog.Logger) handler.Response {
				assert.Same(t, ctx.Logger(), l)
				return response.String(g.greeting + " twice")
			})),
			app.Get("/three", app.Inject3(func(ctx *app.Context, g *greeter, l *slog.Logger, c *app.Context) handler.Response {
				return response.NoContent()
			})),
		),
	)

	assert.Equal(t, "hi", serve(t, a, http.MethodGet, "/one", "").Body.String())
	assert.Equal(t, "hi twice", serve(t, a, http.MethodGet, "/two", "").Body.String())
	assert.Equal(t, http.StatusInternalServerError, serve(t, a, http.MethodGet, "/three", "").Code)
}

func TestApp_BuildFailsAtStartup(t *testing.T) {
	t.Parallel()

	broken := component.ComponentFunc(func(c *component.Container) error {
		return component.Provide(c, func(component.Resolver) (*greeter, error) {
			return nil, errors.New("MAIL_PORT must be between 1 and 65535")
		})
	})

	_, err := app.New(app.WithComponents(broken))
	require.ErrorIs(t, err, app.ErrStartup)
	assert.ErrorIs(t, err, component.ErrBuild)

	_, err = app.New(app.WithRoutes(app.Route{Method: http.MethodGet, Pattern: "/"}))
	assert.ErrorIs(t, err, app.ErrInvalidRoute)

	_, err = app.New(app.WithMount("/metrics", nil))
	assert.ErrorIs(t, err, app.ErrNilMount)
}

func TestApp_MountAndMiddleware(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mw := func(next handler.HandlerFunc[*app.Context]) handler.HandlerFunc[*app.Context] {
		return func(ctx *app.Context) handler.Response {
			calls.Add(1)
			return next(ctx)
		}
	}

	a := app.MustNew(
		app.WithMiddleware(mw),
		app.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		})),
		app.WithRoutes(app.Get("/", func(*app.Context) handler.Response { return response.NoContent() })),
	)

	assert.Equal(t, "metrics", serve(t, a, http.MethodGet, "/metrics", "").Body.String())
	assert.Equal(t, int32(0), calls.Load())

	assert.Equal(t, http.StatusNoContent, serve(t, a, http.MethodGet, "/", "").Code)
	assert.Equal(t, int32(1), calls.Load())
}

type signup struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
}

func TestContext_Bind(t *testing.T) {
	t.Parallel()

	a := app.MustNew(
		app.WithBodyLimit(64),
		app.WithRoutes(app.Post("/", func(ctx *app.Context) handler.Response {
			var req signup
			if err := ctx.Bind(&req); err != nil {
				return response.Error(err)
			}
			return response.String(req.FirstName)
		})),
	)

	tests := []struct {
		name   string
		body   string
		ctype  string
		status int
	}{
		{name: "valid", body: `{"email":"jane@example.com","first_name":"Jane"}`, ctype: "application/json", status: http.StatusOK},
		{name: "validation", body: `{"email":"nope","first_name":""}`, ctype: "application/json", status: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{"email":`, ctype: "application/json", status: http.StatusBadRequest},
		{name: "unknown field", body: `{"name":"Jane"}`, ctype: "application/json", status: http.StatusBadRequest},
		{name: "wrong content type", body: `email=jane`, ctype: "application/x-www-form-urlencoded", status: http.StatusUnsupportedMediaType},
		{name: "too large", body: `{"email":"jane@example.com","first_name":"` + strings.Repeat("J", 64) + `"}`, ctype: "application/json", status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.ctype)
			rec := httptest.NewRecorder()
			a.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestContext_SetValue(t *testing.T) {
	t.Parallel()

	type key struct{}
	a := app.MustNew(app.WithRoutes(app.Get("/", func(ctx *app.Context) handler.Response {
		ctx.SetValue(key{}, "req-1")
		assert.Equal(t, "req-1", ctx.Request().Context().Value(key{}))
		return response.String(ctx.Value(key{}).(string))
	})))

	assert.Equal(t, "req-1", serve(t, a, http.MethodGet, "/", "").Body.String())
}

type closer struct{ closed atomic.Bool }

func (c *closer) Shutdown(context.Context) error {
	c.closed.Store(true)
	return nil
}

func TestApp_RunShutsDownComponents(t *testing.T) {
	t.Parallel()

	cl := &closer{}
	a := app.MustNew(
		app.WithComponents(component.ComponentFunc(func(c *component.Container) error {
			return component.Supply(c, cl)
		})),
		app.WithRoutes(app.Get("/", func(*app.Context) handler.Response { return response.String("ok") })),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := server.DefaultConfig()
	cfg.Addr = addr
	cfg.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, cfg) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, cl.closed.Load())
}
