// internal/provider/provider.go
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/fooodis/fooodis-backend/internal/config"
)

// SendRequest is one outbound email.
type SendRequest struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Result reports one send attempt. Adapters never return Go errors to the
// consumer loop; failures are carried in the Error field.
type Result struct {
	Success  bool
	Provider string
	Error    string
}

// Provider is a pluggable transactional-email integration.
type Provider interface {
	Name() string
	Send(ctx context.Context, req SendRequest) Result
}

// FromConfig selects the adapter named by EMAIL_PROVIDER. Unknown values fall
// back to the console adapter so a misconfigured worker still drains batches.
func FromConfig(cfg config.Config) Provider {
	client := &http.Client{Timeout: 15 * time.Second}

	switch cfg.EmailProvider {
	case "mailgun":
		return &Mailgun{
			APIKey: cfg.MailgunAPIKey,
			Domain: cfg.MailgunDomain,
			From:   cfg.EmailFrom,
			Client: client,
		}
	case "sendgrid":
		return &SendGrid{
			APIKey: cfg.SendGridAPIKey,
			From:   cfg.EmailFrom,
			Client: client,
		}
	case "resend":
		return &Resend{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.EmailFrom,
			Client: client,
		}
	default:
		return &Console{}
	}
}
