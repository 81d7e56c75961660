package mail

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid mail configuration")
	ErrNoRecipients      = errors.New("message has no recipients")
	ErrNoSender          = errors.New("message has no sender and no default sender is configured")
	ErrBadHeader         = errors.New("header value contains a line break")
	ErrInvalidAddress    = errors.New("invalid email address")
	ErrFailedToSend      = errors.New("failed to send mail")
	ErrNilTransport      = errors.New("mail transport is nil")
	ErrDispatcherStopped = errors.New("mail dispatcher is shut down")
)
