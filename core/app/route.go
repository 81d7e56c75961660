package app

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/mailkit/core/handler"
)

// Route binds a handler to a path pattern and HTTP method.
// Patterns use chi syntax, e.g. "/users/{id}".
type Route struct {
	Method  string
	Pattern string
	Handler handler.HandlerFunc[*Context]
}

// NewRoute creates a route. An empty method means GET.
func NewRoute(pattern string, h handler.HandlerFunc[*Context], method string) Route {
	if method == "" {
		method = http.MethodGet
	}
	return Route{
		Method:  strings.ToUpper(method),
		Pattern: pattern,
		Handler: h,
	}
}

// Get returns a GET route.
func Get(pattern string, h handler.HandlerFunc[*Context]) Route {
	return NewRoute(pattern, h, http.MethodGet)
}

// Post returns a POST route.
func Post(pattern string, h handler.HandlerFunc[*Context]) Route {
	return NewRoute(pattern, h, http.MethodPost)
}

func (r Route) validate() error {
	if r.Handler == nil {
		return ErrInvalidRoute
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return ErrInvalidRoute
	}
	return nil
}
