package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/mailkit/core/config"
	"github.com/dmitrymomot/mailkit/core/mail"
)

// ErrRejected is returned when Postmark accepts the request but rejects a message.
var ErrRejected = errors.New("postmark: message rejected")

// maxBatch is the largest batch the Postmark API accepts.
const maxBatch = 500

type batchSender interface {
	SendEmailBatch(ctx context.Context, emails []postmark.Email) ([]postmark.EmailResponse, error)
}

// Transport delivers mail.Message values through the Postmark batch API.
type Transport struct {
	client batchSender
	cfg    Config
}

// New creates a Postmark transport.
func New(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &Transport{client: client, cfg: cfg}, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew(cfg Config) *Transport {
	t, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTransport is a mail.TransportFactory that reads Config from the environment.
// The MAIL_* configuration is not used; Postmark has its own credentials.
func NewTransport(mail.Config) (mail.Transport, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, errors.Join(mail.ErrInvalidConfig, err)
	}
	return New(cfg)
}

// Name implements the transport name used in logs and metrics.
func (t *Transport) Name() string { return "postmark" }

// Deliver sends msgs in batches of up to 500. Every rejected message is
// reported; the returned error matches ErrRejected when at least one was.
// A failed request stops delivery but keeps rejections from earlier batches.
func (t *Transport) Deliver(ctx context.Context, msgs []*mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs []error
	for start := 0; start < len(msgs); start += maxBatch {
		batch := msgs[start:min(start+maxBatch, len(msgs))]

		emails := make([]postmark.Email, len(batch))
		for i, msg := range batch {
			emails[i] = t.email(msg)
		}

		resp, err := t.client.SendEmailBatch(ctx, emails)
		if err != nil {
			return errors.Join(append(errs, fmt.Errorf("postmark: send batch: %w", err))...)
		}
		for i, r := range resp {
			if r.ErrorCode == 0 {
				continue
			}
			id := ""
			if i < len(batch) {
				id = batch[i].MsgID
			}
			errs = append(errs, fmt.Errorf("%w %s: %d - %s", ErrRejected, id, r.ErrorCode, r.Message))
		}
	}
	return errors.Join(errs...)
}

func (t *Transport) email(msg *mail.Message) postmark.Email {
	e := postmark.Email{
		From:          msg.Sender,
		To:            strings.Join(msg.Recipients, ","),
		Cc:            strings.Join(msg.Cc, ","),
		Bcc:           strings.Join(msg.Bcc, ","),
		Subject:       msg.Subject,
		TextBody:      msg.Body,
		HTMLBody:      msg.HTML,
		ReplyTo:       msg.ReplyTo,
		TrackOpens:    t.cfg.TrackOpens,
		TrackLinks:    t.cfg.TrackLinks,
		MessageStream: t.cfg.MessageStream,
	}

	e.Headers = append(e.Headers, postmark.Header{Name: "Message-ID", Value: msg.MsgID})
	for name, value := range msg.Headers {
		e.Headers = append(e.Headers, postmark.Header{Name: name, Value: value})
	}

	for _, a := range msg.Attachments {
		e.Attachments = append(e.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Data),
			ContentType: a.ContentType,
		})
	}
	return e
}
