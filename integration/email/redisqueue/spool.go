package redisqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailkit/core/config"
	"github.com/dmitrymomot/mailkit/core/mail"
)

var (
	ErrConnect = errors.New("redisqueue: failed to connect")
	ErrEnqueue = errors.New("redisqueue: failed to enqueue")
	ErrDecode  = errors.New("redisqueue: malformed envelope")
)

// Envelope is the JSON document pushed for every message.
// Raw holds the complete RFC 5322 message; Bcc recipients appear only in To.
type Envelope struct {
	ID       string    `json:"id"`
	From     string    `json:"from"`
	To       []string  `json:"to"`
	Subject  string    `json:"subject"`
	QueuedAt time.Time `json:"queued_at"`
	Raw      []byte    `json:"raw"`
}

// Transport spools messages to a Redis list for a separate relay to deliver.
type Transport struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// New connects to Redis and creates a spool transport.
func New(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mail.ErrInvalidConfig, err)
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout
	}
	return NewWithClient(redis.NewClient(opts), cfg.Key), nil
}

// NewWithClient wraps an existing client. The transport owns it and closes it on Close.
func NewWithClient(client redis.UniversalClient, key string) *Transport {
	return &Transport{client: client, key: key, now: time.Now}
}

// NewTransport is a mail.TransportFactory that reads Config from the environment.
func NewTransport(mail.Config) (mail.Transport, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, errors.Join(mail.ErrInvalidConfig, err)
	}
	return New(cfg)
}

// Name implements the transport name used in logs and metrics.
func (t *Transport) Name() string { return "redis" }

// Key returns the list messages are pushed to.
func (t *Transport) Key() string { return t.key }

// Deliver pushes one envelope per message in a single pipelined round trip.
// Either every envelope in the call is queued or none is.
func (t *Transport) Deliver(ctx context.Context, msgs []*mail.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	payloads := make([]any, len(msgs))
	for i, msg := range msgs {
		var raw bytes.Buffer
		if _, err := msg.WriteTo(&raw); err != nil {
			return fmt.Errorf("%w %s: %w", ErrEnqueue, msg.MsgID, err)
		}
		b, err := json.Marshal(Envelope{
			ID:       msg.MsgID,
			From:     msg.Sender,
			To:       msg.SendTo(),
			Subject:  msg.Subject,
			QueuedAt: t.now().UTC(),
			Raw:      raw.Bytes(),
		})
		if err != nil {
			return fmt.Errorf("%w %s: %w", ErrEnqueue, msg.MsgID, err)
		}
		payloads[i] = b
	}

	_, err := t.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, t.key, payloads...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueue, err)
	}
	return nil
}

// Pop removes the oldest envelope, waiting up to timeout for one to arrive.
// It returns redis.Nil when the list stays empty.
func (t *Transport) Pop(ctx context.Context, timeout time.Duration) (Envelope, error) {
	res, err := t.client.BLPop(ctx, timeout, t.key).Result()
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return env, nil
}

// Len returns the number of queued envelopes.
func (t *Transport) Len(ctx context.Context) (int64, error) {
	return t.client.LLen(ctx, t.key).Result()
}

// Healthcheck pings Redis.
func (t *Transport) Healthcheck(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return nil
}

// Close closes the Redis client.
func (t *Transport) Close() error {
	return t.client.Close()
}
