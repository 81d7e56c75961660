package postmark

import (
	"fmt"

	"github.com/dmitrymomot/mailkit/core/mail"
)

// TrackLinks values accepted by Postmark.
const (
	TrackLinksNone     = "None"
	TrackLinksHTMLOnly = "HtmlOnly"
	TrackLinksTextOnly = "TextOnly"
	TrackLinksBoth     = "HtmlAndText"
)

// Config holds Postmark API credentials and delivery defaults.
type Config struct {
	ServerToken   string `env:"POSTMARK_SERVER_TOKEN,required"`
	AccountToken  string `env:"POSTMARK_ACCOUNT_TOKEN"`
	MessageStream string `env:"POSTMARK_MESSAGE_STREAM" envDefault:"outbound"`
	TrackOpens    bool   `env:"POSTMARK_TRACK_OPENS"`
	TrackLinks    string `env:"POSTMARK_TRACK_LINKS" envDefault:"None"`

	// BaseURL overrides the API endpoint. Leave empty for api.postmarkapp.com.
	BaseURL string `env:"POSTMARK_BASE_URL"`
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.ServerToken == "" {
		return fmt.Errorf("%w: ServerToken is required", mail.ErrInvalidConfig)
	}
	switch c.TrackLinks {
	case "", TrackLinksNone, TrackLinksHTMLOnly, TrackLinksTextOnly, TrackLinksBoth:
	default:
		return fmt.Errorf("%w: TrackLinks must be None, HtmlOnly, TextOnly, or HtmlAndText", mail.ErrInvalidConfig)
	}
	return nil
}
