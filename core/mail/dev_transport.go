package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// DevTransport writes messages to a directory instead of delivering them.
// Each message produces a .eml file with the full MIME message, a .json file
// with its metadata and, when the message has an HTML part, a .html file
// that can be opened in a browser.
type DevTransport struct {
	dir string
	seq atomic.Uint64
	now func() time.Time
}

// NewDevTransport creates a transport writing into dir.
// The directory is created on first delivery.
func NewDevTransport(dir string) *DevTransport {
	return &DevTransport{dir: dir, now: time.Now}
}

// Name implements the transport name used in logs and metrics.
func (d *DevTransport) Name() string { return "dev" }

// Dir returns the output directory.
func (d *DevTransport) Dir() string { return d.dir }

type devMetadata struct {
	Timestamp   string   `json:"timestamp"`
	MessageID   string   `json:"message_id"`
	From        string   `json:"from"`
	To          []string `json:"to"`
	Cc          []string `json:"cc,omitempty"`
	Bcc         []string `json:"bcc,omitempty"`
	ReplyTo     string   `json:"reply_to,omitempty"`
	Subject     string   `json:"subject"`
	Attachments []string `json:"attachments,omitempty"`
}

// Deliver writes every message to the output directory.
func (d *DevTransport) Deliver(ctx context.Context, msgs []*Message) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.write(msg); err != nil {
			return err
		}
	}
	return nil
}

func (d *DevTransport) write(msg *Message) error {
	now := d.now()
	base, eml, err := d.createEML(now, msg.Subject)
	if err != nil {
		return fmt.Errorf("create eml file: %w", err)
	}
	if _, err := msg.WriteTo(eml); err != nil {
		_ = eml.Close()
		return fmt.Errorf("write eml file: %w", err)
	}
	if err := eml.Close(); err != nil {
		return fmt.Errorf("close eml file: %w", err)
	}

	meta := devMetadata{
		Timestamp: now.Format(time.RFC3339),
		MessageID: msg.MsgID,
		From:      msg.Sender,
		To:        msg.Recipients,
		Cc:        msg.Cc,
		Bcc:       msg.Bcc,
		ReplyTo:   msg.ReplyTo,
		Subject:   msg.Subject,
	}
	for _, a := range msg.Attachments {
		meta.Attachments = append(meta.Attachments, a.Filename)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}

	if msg.HTML != "" {
		if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
			return fmt.Errorf("write html file: %w", err)
		}
	}
	return nil
}

// createEML creates a new .eml file and returns its name without extension.
// Existing files are never overwritten; a taken name moves on to the next sequence number.
func (d *DevTransport) createEML(now time.Time, subject string) (string, *os.File, error) {
	stamp := now.Format("2006_01_02_150405")
	name := sanitizeFilename(subject)
	for {
		base := fmt.Sprintf("%s_%03d_%s", stamp, d.seq.Add(1), name)
		f, err := os.OpenFile(filepath.Join(d.dir, base+".eml"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return base, f, err
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename turns a subject into a short lowercase filename fragment.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
