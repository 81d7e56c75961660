package mail

import (
	"fmt"
	"time"
)

// Config holds the MAIL_* options. It is decoded from settings.Settings.
type Config struct {
	Server   string `env:"MAIL_SERVER" envDefault:"localhost"`
	Port     int    `env:"MAIL_PORT" envDefault:"25"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	UseTLS   bool   `env:"MAIL_USE_TLS" envDefault:"false"`
	UseSSL   bool   `env:"MAIL_USE_SSL" envDefault:"false"`

	// DefaultSender is used as From when a message has no sender.
	DefaultSender string `env:"MAIL_DEFAULT_SENDER"`

	// MaxEmails caps the messages delivered over one connection. Zero means no limit.
	MaxEmails int `env:"MAIL_MAX_EMAILS" envDefault:"0"`

	// SuppressSend records messages in an Outbox instead of delivering them.
	SuppressSend bool `env:"MAIL_SUPPRESS_SEND" envDefault:"false"`

	// DevDir, when set, writes messages to files in this directory instead of delivering them.
	DevDir string `env:"MAIL_DEV_DIR"`

	// Timeout bounds connecting and background sends.
	Timeout time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the configuration used when no MAIL_* settings are given.
func DefaultConfig() Config {
	return Config{
		Server:  "localhost",
		Port:    25,
		Timeout: 10 * time.Second,
	}
}

// Validate reports configuration that no transport can work with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: MAIL_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.Port)
	}
	if c.UseTLS && c.UseSSL {
		return fmt.Errorf("%w: MAIL_USE_TLS and MAIL_USE_SSL are mutually exclusive", ErrInvalidConfig)
	}
	if c.MaxEmails < 0 {
		return fmt.Errorf("%w: MAIL_MAX_EMAILS must not be negative", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: MAIL_TIMEOUT must not be negative", ErrInvalidConfig)
	}
	if c.DefaultSender != "" {
		if _, err := parseAddress(c.DefaultSender); err != nil {
			return fmt.Errorf("%w: MAIL_DEFAULT_SENDER: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
