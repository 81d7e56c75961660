// Package component implements the dependency container used by the app to
// construct shared services once and hand them to handlers by declared type.
//
// Components register providers keyed by the Go type they produce. A provider
// runs the first time its type is resolved (or when Build is called) and may
// resolve its own dependencies through the Resolver it receives:
//
//	c := component.New()
//	component.Supply(c, settings.New(map[string]any{"MAIL_SERVER": "localhost"}))
//	component.Provide(c, func(r component.Resolver) (*mail.Mail, error) {
//		s, err := component.Resolve[settings.Settings](r)
//		if err != nil {
//			return nil, err
//		}
//		...
//	})
//
//	m := component.MustResolve[*mail.Mail](c)
//
// Values that implement Shutdown(context.Context) error or io.Closer are
// released by Container.Shutdown in reverse construction order.
package component

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrNotRegistered = errors.New("component not registered")
	ErrDuplicate     = errors.New("component already registered")
	ErrCycle         = errors.New("component dependency cycle")
	ErrBuild         = errors.New("failed to build component")
	ErrNilFactory    = errors.New("component factory is nil")
)

// Component registers one or more providers with a container.
type Component interface {
	Register(c *Container) error
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(c *Container) error

// Register calls f(c).
func (f ComponentFunc) Register(c *Container) error {
	return f(c)
}

// Resolver looks up constructed components by type.
// Both *Container and the resolver passed to factories implement it.
type Resolver interface {
	Lookup(t reflect.Type) (any, error)
}

// Factory constructs a component of type T.
type Factory[T any] func(r Resolver) (T, error)

type entry struct {
	typ     reflect.Type
	factory func(r Resolver) (any, error)
	value   any
	built   bool
}

// Container holds component providers and their constructed values.
// It is safe for concurrent use.
type Container struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
	order   []reflect.Type
	built   []reflect.Type
}

// New creates an empty container.
func New() *Container {
	return &Container{entries: make(map[reflect.Type]*entry)}
}

// Register registers all components in order and stops at the first error.
func (c *Container) Register(components ...Component) error {
	for _, comp := range components {
		if comp == nil {
			continue
		}
		if err := comp.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Provide registers a lazily constructed singleton of type T.
func Provide[T any](c *Container, factory Factory[T]) error {
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, typeOf[T]())
	}
	return c.add(&entry{
		typ: typeOf[T](),
		factory: func(r Resolver) (any, error) {
			return factory(r)
		},
	})
}

// Supply registers an already constructed value of type T.
func Supply[T any](c *Container, v T) error {
	return c.add(&entry{typ: typeOf[T](), value: v, built: true})
}

// Resolve returns the component of type T, constructing it on first use.
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	v, err := r.Lookup(typeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrBuild, typeOf[T](), v)
	}
	return typed, nil
}

// Optional is like Resolve but returns the zero value and no error when T
// itself is not registered. Errors from building T are still returned.
func Optional[T any](r Resolver) (T, error) {
	v, err := Resolve[T](r)
	if err != nil && errors.Is(err, ErrNotRegistered) && !errors.Is(err, ErrBuild) {
		var zero T
		return zero, nil
	}
	return v, err
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a provider for T is registered.
func Has[T any](c *Container) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[typeOf[T]()]
	return ok
}

// Lookup implements Resolver.
func (c *Container) Lookup(t reflect.Type) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build(t, nil)
}

// Build constructs every registered component in registration order.
// Use it at startup so configuration errors surface before serving traffic.
func (c *Container) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.order {
		if _, err := c.build(t, nil); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown releases constructed components in reverse construction order.
// Components implementing Shutdown(context.Context) error are preferred over io.Closer.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	built := make([]any, 0, len(c.built))
	for i := len(c.built) - 1; i >= 0; i-- {
		built = append(built, c.entries[c.built[i]].value)
	}
	c.built = nil
	c.mu.Unlock()

	var errs []error
	for _, v := range built {
		switch s := v.(type) {
		case interface{ Shutdown(context.Context) error }:
			if err := s.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		case io.Closer:
			if err := s.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Container) add(e *entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[e.typ]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.typ)
	}
	c.entries[e.typ] = e
	c.order = append(c.order, e.typ)
	if e.built {
		c.built = append(c.built, e.typ)
	}
	return nil
}

// build must be called with c.mu held. chain is the stack of types currently
// under construction on this call path.
func (c *Container) build(t reflect.Type, chain []reflect.Type) (any, error) {
	e, ok := c.entries[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, t)
	}
	if e.built {
		return e.value, nil
	}

	next := append(chain[:len(chain):len(chain)], t)
	for _, inProgress := range chain {
		if inProgress == t {
			return nil, fmt.Errorf("%w: %s", ErrCycle, formatChain(next))
		}
	}

	v, err := e.factory(&scope{c: c, chain: next})
	if err != nil {
		if errors.Is(err, ErrCycle) || errors.Is(err, ErrBuild) {
			return nil, err
		}
		return nil, fmt.Errorf("%w %s: %w", ErrBuild, t, err)
	}

	e.value = v
	e.built = true
	c.built = append(c.built, t)
	return v, nil
}

// scope resolves dependencies for a factory that is running under the container lock.
type scope struct {
	c     *Container
	chain []reflect.Type
}

func (s *scope) Lookup(t reflect.Type) (any, error) {
	return s.c.build(t, s.chain)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func formatChain(chain []reflect.Type) string {
	names := make([]string, len(chain))
	for i, t := range chain {
		names[i] = t.String()
	}
	return strings.Join(names, " -> ")
}
