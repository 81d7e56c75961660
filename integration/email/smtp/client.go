package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	gomail "github.com/go-mail/mail"

	"github.com/dmitrymomot/mailkit/core/mail"
)

var (
	ErrConnect = errors.New("smtp: failed to connect")
	ErrSend    = errors.New("smtp: failed to send message")
)

// Transport delivers mail.Message values over SMTP.
// It is safe for concurrent use; every Deliver call opens its own connection.
type Transport struct {
	cfg    Config
	dialer *gomail.Dialer
	dial   func(d *gomail.Dialer) (gomail.SendCloser, error)
}

// New creates an SMTP transport.
func New(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.LocalName = cfg.LocalName
	d.Timeout = cfg.Timeout
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	switch cfg.TLSMode {
	case TLSModeTLS:
		d.SSL = true
	case TLSModeStartTLS:
		d.SSL = false
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	case TLSModePlain:
		d.SSL = false
		d.StartTLSPolicy = gomail.NoStartTLS
	}

	return &Transport{
		cfg:    cfg,
		dialer: d,
		dial:   func(d *gomail.Dialer) (gomail.SendCloser, error) { return d.Dial() },
	}, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(cfg Config) *Transport {
	t, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTransport is a mail.TransportFactory for mail.Component.
func NewTransport(cfg mail.Config) (mail.Transport, error) {
	return New(ConfigFromMail(cfg))
}

// Name implements the transport name used in logs and metrics.
func (t *Transport) Name() string { return "smtp" }

// Healthcheck dials the server and closes the connection again.
func (t *Transport) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := t.dialerFor(ctx)
	sc, err := t.dial(&d)
	if err != nil {
		return fmt.Errorf("%w to %s:%d: %w", ErrConnect, t.cfg.Host, t.cfg.Port, err)
	}
	return sc.Close()
}

// Deliver opens one connection, sends every message over it and closes it.
// ctx is checked between messages and shortens the dial timeout when its
// deadline is sooner.
func (t *Transport) Deliver(ctx context.Context, msgs []*mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	d := t.dialerFor(ctx)
	sc, err := t.dial(&d)
	if err != nil {
		return fmt.Errorf("%w to %s:%d: %w", ErrConnect, t.cfg.Host, t.cfg.Port, err)
	}

	var sendErr error
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			sendErr = err
			break
		}
		if err := gomail.Send(sc, msg.MIME()); err != nil {
			sendErr = fmt.Errorf("%w %d of %d (%s): %w", ErrSend, i+1, len(msgs), msg.MsgID, err)
			break
		}
	}

	if err := sc.Close(); err != nil && sendErr == nil {
		// Close sends QUIT. Its error matters only when every send succeeded.
		return fmt.Errorf("smtp: close connection: %w", err)
	}
	return sendErr
}

// dialerFor copies the dialer, shortening its timeout to the ctx deadline.
func (t *Transport) dialerFor(ctx context.Context) gomail.Dialer {
	d := *t.dialer
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); d.Timeout == 0 || remaining < d.Timeout {
			d.Timeout = remaining
		}
	}
	return d
}
