package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/mailkit/core/logger"
)

// Mail composes and sends messages through a Transport.
// It is safe for concurrent use.
type Mail struct {
	cfg       Config
	transport Transport
	name      string
	logger    *slog.Logger
	registry  prometheus.Registerer
	metrics   *metrics
	now       func() time.Time
}

// Option configures a Mail.
type Option func(*Mail)

// WithLogger sets the logger. Mail logs nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mail) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics registers sent and failed message counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Mail) { m.registry = reg }
}

// WithClock sets the function used to stamp message dates.
func WithClock(now func() time.Time) Option {
	return func(m *Mail) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Mail that delivers through transport.
func New(cfg Config, transport Transport, opts ...Option) (*Mail, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Mail{
		cfg:       cfg,
		transport: transport,
		name:      TransportName(transport),
		logger:    logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("mail"), logger.Transport(m.name))

	if m.registry != nil {
		mt, err := newMetrics(m.registry)
		if err != nil {
			return nil, fmt.Errorf("mail: register metrics: %w", err)
		}
		m.metrics = mt
	}

	return m, nil
}

// Config returns the configuration the Mail was created with.
func (m *Mail) Config() Config {
	return m.cfg
}

// Transport returns the underlying transport.
func (m *Mail) Transport() Transport {
	return m.transport
}

// Send fills in the sender, date and message ID when missing, validates msg
// and delivers it. Validation errors are returned as is; delivery errors
// match ErrFailedToSend.
func (m *Mail) Send(ctx context.Context, msg Message) error {
	m.prepare(&msg)
	if err := msg.Validate(); err != nil {
		return err
	}
	return m.deliver(ctx, []*Message{&msg})
}

// SendMany validates every message before delivering any of them, then
// delivers them over as few connections as MAIL_MAX_EMAILS allows.
func (m *Mail) SendMany(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	prepared := make([]*Message, len(msgs))
	for i := range msgs {
		msg := msgs[i]
		m.prepare(&msg)
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		prepared[i] = &msg
	}

	size := m.cfg.MaxEmails
	if size <= 0 {
		size = len(prepared)
	}
	for start := 0; start < len(prepared); start += size {
		end := min(start+size, len(prepared))
		if err := m.deliver(ctx, prepared[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mail) prepare(msg *Message) {
	if msg.Sender == "" {
		msg.Sender = m.cfg.DefaultSender
	}
	if msg.Date.IsZero() {
		msg.Date = m.now()
	}
	if msg.MsgID == "" {
		domain := domainOf(msg.Sender)
		if domain == "" {
			domain = m.cfg.Server
		}
		msg.MsgID = fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
	}
}

func (m *Mail) deliver(ctx context.Context, msgs []*Message) error {
	if err := ctx.Err(); err != nil {
		m.metrics.observe(m.name, len(msgs), err)
		return errors.Join(ErrFailedToSend, err)
	}

	start := time.Now()
	err := m.transport.Deliver(ctx, msgs)
	m.metrics.observe(m.name, len(msgs), err)

	if err != nil {
		m.logger.ErrorContext(ctx, "mail delivery failed",
			logger.Error(err),
			logger.Count("messages", len(msgs)),
			logger.Duration(time.Since(start)),
		)
		return errors.Join(ErrFailedToSend, err)
	}

	for _, msg := range msgs {
		m.logger.DebugContext(ctx, "mail sent",
			logger.MessageID(msg.MsgID),
			logger.Recipients(len(msg.SendTo())),
		)
	}
	return nil
}
