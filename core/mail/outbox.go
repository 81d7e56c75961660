package mail

import (
	"context"
	"slices"
	"sync"
)

// Outbox is a Transport that records messages instead of delivering them.
// It backs MAIL_SUPPRESS_SEND and is convenient in tests.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Name implements the transport name used in logs and metrics.
func (o *Outbox) Name() string { return "outbox" }

// Deliver records copies of msgs.
func (o *Outbox) Deliver(ctx context.Context, msgs []*Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range msgs {
		o.messages = append(o.messages, cloneMessage(*msg))
	}
	return nil
}

// Messages returns the recorded messages in delivery order.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.messages)
}

// Len returns the number of recorded messages.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

// Reset discards the recorded messages.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
}

func cloneMessage(m Message) Message {
	m.Recipients = slices.Clone(m.Recipients)
	m.Cc = slices.Clone(m.Cc)
	m.Bcc = slices.Clone(m.Bcc)
	m.Attachments = slices.Clone(m.Attachments)
	if m.Headers != nil {
		headers := make(map[string]string, len(m.Headers))
		for k, v := range m.Headers {
			headers[k] = v
		}
		m.Headers = headers
	}
	return m
}
