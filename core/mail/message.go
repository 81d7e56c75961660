package mail

import (
	"bytes"
	"fmt"
	"io"
	netmail "net/mail"
	"strings"
	"time"

	gomail "github.com/go-mail/mail"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outgoing email.
//
// Body is the plain text part. HTML, when set, is sent as an alternative
// part so clients that cannot render HTML show Body instead.
type Message struct {
	Subject    string
	Body       string
	HTML       string
	Recipients []string

	// Sender is the From address. Mail fills it from MAIL_DEFAULT_SENDER when empty.
	Sender  string
	Cc      []string
	Bcc     []string
	ReplyTo string

	// Headers are extra header fields, such as List-Unsubscribe.
	Headers     map[string]string
	Attachments []Attachment

	// Date and MsgID are filled by Mail when zero.
	Date  time.Time
	MsgID string
}

// AddRecipient appends an address to Recipients.
func (m *Message) AddRecipient(address string) {
	m.Recipients = append(m.Recipients, address)
}

// Attach adds a file attachment.
func (m *Message) Attach(filename, contentType string, data []byte) {
	m.Attachments = append(m.Attachments, Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
}

// SendTo returns every envelope recipient: Recipients, Cc and Bcc without duplicates.
func (m Message) SendTo() []string {
	n := len(m.Recipients) + len(m.Cc) + len(m.Bcc)
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, list := range [][]string{m.Recipients, m.Cc, m.Bcc} {
		for _, addr := range list {
			key := strings.ToLower(strings.TrimSpace(addr))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

// Validate reports whether the message can be handed to a transport.
func (m Message) Validate() error {
	if len(m.Recipients) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Sender) == "" {
		return ErrNoSender
	}

	for name, value := range map[string]string{"Subject": m.Subject, "From": m.Sender, "Reply-To": m.ReplyTo, "Message-ID": m.MsgID} {
		if hasLineBreak(value) {
			return fmt.Errorf("%w: %s", ErrBadHeader, name)
		}
	}
	for name, value := range m.Headers {
		if hasLineBreak(name) || hasLineBreak(value) {
			return fmt.Errorf("%w: %s", ErrBadHeader, name)
		}
	}

	if _, err := parseAddress(m.Sender); err != nil {
		return err
	}
	if m.ReplyTo != "" {
		if _, err := parseAddress(m.ReplyTo); err != nil {
			return err
		}
	}
	for _, addr := range m.SendTo() {
		if _, err := parseAddress(addr); err != nil {
			return err
		}
	}
	return nil
}

// MIME converts the message into a go-mail message ready to be written or sent.
func (m Message) MIME() *gomail.Message {
	msg := gomail.NewMessage()

	for name, value := range m.Headers {
		msg.SetHeader(name, value)
	}

	// FormatAddress encodes only the display name, leaving the address readable.
	msg.SetHeader("From", formatAddresses(msg, m.Sender)...)
	msg.SetHeader("To", formatAddresses(msg, m.Recipients...)...)
	if len(m.Cc) > 0 {
		msg.SetHeader("Cc", formatAddresses(msg, m.Cc...)...)
	}
	if len(m.Bcc) > 0 {
		msg.SetHeader("Bcc", formatAddresses(msg, m.Bcc...)...)
	}
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", formatAddresses(msg, m.ReplyTo)...)
	}
	msg.SetHeader("Subject", m.Subject)
	if !m.Date.IsZero() {
		msg.SetDateHeader("Date", m.Date)
	}
	if m.MsgID != "" {
		msg.SetHeader("Message-ID", m.MsgID)
	}

	switch {
	case m.Body != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Body)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Body)
	}

	for _, a := range m.Attachments {
		var settings []gomail.FileSetting
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		msg.AttachReader(a.Filename, bytes.NewReader(a.Data), settings...)
	}

	return msg
}

// WriteTo writes the message in RFC 5322 format. Bcc is never written.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	return m.MIME().WriteTo(w)
}

func formatAddresses(msg *gomail.Message, addrs ...string) []string {
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		parsed, err := netmail.ParseAddress(addr)
		if err != nil {
			out[i] = addr
			continue
		}
		out[i] = msg.FormatAddress(parsed.Address, parsed.Name)
	}
	return out
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

func parseAddress(addr string) (*netmail.Address, error) {
	parsed, err := netmail.ParseAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidAddress, addr, err)
	}
	return parsed, nil
}

// domainOf returns the domain part of an address, or "" if it cannot be parsed.
func domainOf(addr string) string {
	parsed, err := netmail.ParseAddress(addr)
	if err != nil {
		return ""
	}
	_, domain, ok := strings.Cut(parsed.Address, "@")
	if !ok {
		return ""
	}
	return domain
}
