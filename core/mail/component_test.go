package mail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/component"
	"github.com/dmitrymomot/mailkit/core/mail"
	"github.com/dmitrymomot/mailkit/core/settings"
)

func newContainer(t *testing.T, values map[string]any, comps ...component.Component) *component.Container {
	t.Helper()
	c := component.New()
	require.NoError(t, c.Register(append([]component.Component{settings.Component(settings.New(values))}, comps...)...))
	return c
}

func TestComponent_UsesFactory(t *testing.T) {
	t.Parallel()

	outbox := mail.NewOutbox()
	var got mail.Config
	factory := func(cfg mail.Config) (mail.Transport, error) {
		got = cfg
		return outbox, nil
	}

	c := newContainer(t, map[string]any{
		"MAIL_SERVER":         "smtp.example.com",
		"MAIL_PORT":           "587",
		"MAIL_USE_TLS":        true,
		"MAIL_DEFAULT_SENDER": "hello@example.com",
	}, mail.Component(factory))
	require.NoError(t, c.Build())

	assert.Equal(t, "smtp.example.com", got.Server)
	assert.Equal(t, 587, got.Port)
	assert.True(t, got.UseTLS)

	m := component.MustResolve[*mail.Mail](c)
	assert.Same(t, m, component.MustResolve[*mail.Mail](c))
	require.NoError(t, m.Send(context.Background(), mail.Message{Recipients: []string{"jane@example.com"}}))
	assert.Equal(t, 1, outbox.Len())
}

func TestComponent_SuppressSend(t *testing.T) {
	t.Parallel()

	factory := func(mail.Config) (mail.Transport, error) {
		return nil, errors.New("factory must not be called")
	}
	c := newContainer(t, map[string]any{
		"MAIL_SUPPRESS_SEND":  true,
		"MAIL_DEFAULT_SENDER": "hello@example.com",
	}, mail.Component(factory), mail.DispatcherComponent())
	require.NoError(t, c.Build())

	outbox := component.MustResolve[*mail.Outbox](c)
	require.NotNil(t, outbox)

	d := component.MustResolve[*mail.Dispatcher](c)
	require.NoError(t, d.Dispatch(context.Background(), mail.Message{Recipients: []string{"jane@example.com"}}).Await(context.Background()))
	assert.Equal(t, 1, outbox.Len())

	require.NoError(t, c.Shutdown(context.Background()))
}

func TestComponent_DevDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := newContainer(t, map[string]any{"MAIL_DEV_DIR": dir}, mail.Component(nil))

	transport := component.MustResolve[mail.Transport](c)
	dev, ok := transport.(*mail.DevTransport)
	require.True(t, ok)
	assert.Equal(t, dir, dev.Dir())
	assert.Nil(t, component.MustResolve[*mail.Outbox](c))
}

func TestComponent_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid settings", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, map[string]any{"MAIL_USE_TLS": true, "MAIL_USE_SSL": true}, mail.Component(nil))
		err := c.Build()
		assert.ErrorIs(t, err, component.ErrBuild)
		assert.ErrorIs(t, err, mail.ErrInvalidConfig)
	})

	t.Run("unparsable port", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, map[string]any{"MAIL_PORT": "smtp"}, mail.Component(nil))
		assert.ErrorIs(t, c.Build(), mail.ErrInvalidConfig)
	})

	t.Run("no factory", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, nil, mail.Component(nil))
		assert.ErrorIs(t, c.Build(), mail.ErrNilTransport)
	})

	t.Run("missing settings", func(t *testing.T) {
		t.Parallel()

		c := component.New()
		require.NoError(t, c.Register(mail.Component(nil)))
		assert.ErrorIs(t, c.Build(), component.ErrNotRegistered)
	})
}

func TestComponent_RegistersMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := newContainer(t, map[string]any{"MAIL_SUPPRESS_SEND": true, "MAIL_DEFAULT_SENDER": "hello@example.com"},
		component.ComponentFunc(func(c *component.Container) error {
			return component.Supply[prometheus.Registerer](c, reg)
		}),
		mail.Component(nil),
	)

	m := component.MustResolve[*mail.Mail](c)
	require.NoError(t, m.Send(context.Background(), mail.Message{Recipients: []string{"jane@example.com"}}))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "mailkit_mail_sent_total", families[0].GetName())
}
