package redisqueue

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/mailkit/core/mail"
)

// Config holds the Redis connection and the list the spool writes to.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Key            string        `env:"MAIL_QUEUE_KEY" envDefault:"mail:outbox"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"5s"`
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.ConnectionURL == "" {
		return fmt.Errorf("%w: ConnectionURL is required", mail.ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.ConnectionURL, "redis://") && !strings.HasPrefix(c.ConnectionURL, "rediss://") {
		return fmt.Errorf("%w: ConnectionURL must use redis:// or rediss://", mail.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("%w: Key is required", mail.ErrInvalidConfig)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("%w: ConnectTimeout cannot be negative", mail.ErrInvalidConfig)
	}
	return nil
}
