package mail

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/settings"
)

// Component registers Config, Transport, *Outbox and *Mail.
//
// The configuration is decoded from settings.Settings. The transport is an
// Outbox when MAIL_SUPPRESS_SEND is true, a DevTransport when MAIL_DEV_DIR is
// set, and factory(cfg) otherwise. *Outbox resolves to nil unless sending is
// suppressed.
//
// A *slog.Logger and a prometheus.Registerer are used when the container has them.
func Component(factory TransportFactory, opts ...Option) component.Component {
	return component.ComponentFunc(func(c *component.Container) error {
		if err := component.Provide(c, provideConfig); err != nil {
			return err
		}
		if err := component.Provide(c, func(r component.Resolver) (Transport, error) {
			return provideTransport(r, factory)
		}); err != nil {
			return err
		}
		if err := component.Provide(c, provideOutbox); err != nil {
			return err
		}
		return component.Provide(c, func(r component.Resolver) (*Mail, error) {
			return provideMail(r, opts)
		})
	})
}

// DispatcherComponent registers *Dispatcher. It requires Component.
func DispatcherComponent(opts ...DispatcherOption) component.Component {
	return component.ComponentFunc(func(c *component.Container) error {
		return component.Provide(c, func(r component.Resolver) (*Dispatcher, error) {
			m, err := component.Resolve[*Mail](r)
			if err != nil {
				return nil, err
			}
			log, err := component.Optional[*slog.Logger](r)
			if err != nil {
				return nil, err
			}
			return NewDispatcher(m, append([]DispatcherOption{WithDispatcherLogger(log)}, opts...)...), nil
		})
	})
}

func provideConfig(r component.Resolver) (Config, error) {
	s, err := component.Resolve[settings.Settings](r)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := s.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func provideTransport(r component.Resolver, factory TransportFactory) (Transport, error) {
	cfg, err := component.Resolve[Config](r)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.SuppressSend:
		return NewOutbox(), nil
	case cfg.DevDir != "":
		return NewDevTransport(cfg.DevDir), nil
	case factory == nil:
		return nil, ErrNilTransport
	}

	t, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNilTransport
	}
	return t, nil
}

func provideOutbox(r component.Resolver) (*Outbox, error) {
	t, err := component.Resolve[Transport](r)
	if err != nil {
		return nil, err
	}
	outbox, _ := t.(*Outbox)
	return outbox, nil
}

func provideMail(r component.Resolver, opts []Option) (*Mail, error) {
	cfg, err := component.Resolve[Config](r)
	if err != nil {
		return nil, err
	}
	t, err := component.Resolve[Transport](r)
	if err != nil {
		return nil, err
	}

	defaults := make([]Option, 0, 2)
	if log, err := component.Optional[*slog.Logger](r); err != nil {
		return nil, err
	} else if log != nil {
		defaults = append(defaults, WithLogger(log))
	}
	if reg, err := component.Optional[prometheus.Registerer](r); err != nil {
		return nil, err
	} else if reg != nil {
		defaults = append(defaults, WithMetrics(reg))
	}

	return New(cfg, t, append(defaults, opts...)...)
}
