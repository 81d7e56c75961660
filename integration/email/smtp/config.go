package smtp

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/mailkit/core/mail"
)

// TLS modes.
const (
	// TLSModeStartTLS connects in plain text and requires an upgrade with STARTTLS.
	TLSModeStartTLS = "starttls"
	// TLSModeTLS connects over TLS from the start, usually on port 465.
	TLSModeTLS = "tls"
	// TLSModePlain never encrypts the connection. Use it only for local relays.
	TLSModePlain = "plain"
)

// Config holds SMTP server configuration.
type Config struct {
	Host     string `env:"SMTP_HOST,required"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	TLSMode  string `env:"SMTP_TLS_MODE" envDefault:"starttls"`

	// LocalName is sent with HELO/EHLO. Defaults to "localhost".
	LocalName string        `env:"SMTP_LOCAL_NAME"`
	Timeout   time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	InsecureSkipVerify bool `env:"SMTP_INSECURE_SKIP_VERIFY"`
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: Host is required", mail.ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: Port must be between 1 and 65535", mail.ErrInvalidConfig)
	}
	switch c.TLSMode {
	case TLSModeStartTLS, TLSModeTLS, TLSModePlain:
	default:
		return fmt.Errorf("%w: TLSMode must be starttls, tls, or plain", mail.ErrInvalidConfig)
	}
	if c.Password != "" && c.Username == "" {
		return fmt.Errorf("%w: Username is required when Password is set", mail.ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: Timeout must not be negative", mail.ErrInvalidConfig)
	}
	return nil
}

// ConfigFromMail maps MAIL_* options to an SMTP configuration.
// MAIL_USE_SSL selects TLS, MAIL_USE_TLS selects STARTTLS, neither selects plain.
func ConfigFromMail(mc mail.Config) Config {
	mode := TLSModePlain
	switch {
	case mc.UseSSL:
		mode = TLSModeTLS
	case mc.UseTLS:
		mode = TLSModeStartTLS
	}
	return Config{
		Host:     mc.Server,
		Port:     mc.Port,
		Username: mc.Username,
		Password: mc.Password,
		TLSMode:  mode,
		Timeout:  mc.Timeout,
	}
}
