package mail

import "context"

// Transport delivers messages. Implementations open one connection per
// Deliver call and send every message over it.
//
// Messages passed to Deliver are complete: sender, date and message ID are
// set and Validate has succeeded.
type Transport interface {
	Deliver(ctx context.Context, msgs []*Message) error
}

// TransportFactory builds a transport from the mail configuration.
type TransportFactory func(cfg Config) (Transport, error)

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, msgs []*Message) error

// Deliver calls f(ctx, msgs).
func (f TransportFunc) Deliver(ctx context.Context, msgs []*Message) error {
	return f(ctx, msgs)
}

// TransportName returns the name used in logs and metrics labels.
// Transports report it through a Name() string method; others are "custom".
func TransportName(t Transport) string {
	if n, ok := t.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}

// Healthcheck returns a readiness check for t. Transports that can check
// their backend implement Healthcheck(context.Context) error; for the rest
// the check always succeeds.
func Healthcheck(t Transport) func(ctx context.Context) error {
	if hc, ok := t.(interface{ Healthcheck(context.Context) error }); ok {
		return hc.Healthcheck
	}
	return func(context.Context) error { return nil }
}
