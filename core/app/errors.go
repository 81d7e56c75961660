package app

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/mailkit/core/response"
)

var (
	ErrNilResponse   = errors.New("handler returned nil response")
	ErrInvalidRoute  = errors.New("invalid route")
	ErrNilMount      = errors.New("mounted handler is nil")
	ErrStartup       = errors.New("app startup failed")
	ErrResolveFailed = errors.New("failed to resolve handler dependency")
)

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode reports 500 so error handlers render it as an internal error.
func (e *PanicError) StatusCode() int {
	return response.ErrInternalServerError.Status
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
