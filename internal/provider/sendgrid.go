// internal/provider/sendgrid.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// SendGrid sends through the SendGrid v3 mail API.
type SendGrid struct {
	APIKey  string
	From    string
	Client  *http.Client
	BaseURL string // overridable in tests
}

func (s *SendGrid) Name() string { return "sendgrid" }

func (s *SendGrid) Send(ctx context.Context, req SendRequest) Result {
	if s.APIKey == "" {
		return Result{Success: false, Provider: "sendgrid", Error: "SendGrid API key not configured"}
	}

	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": req.To, "name": req.ToName}}},
		},
		"from":    map[string]string{"email": s.From, "name": "Fooodis"},
		"subject": req.Subject,
		"content": []map[string]string{{"type": "text/html", "value": req.HTML}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Provider: "sendgrid", Error: err.Error()}
	}

	base := s.BaseURL
	if base == "" {
		base = "https://api.sendgrid.com"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Provider: "sendgrid", Error: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return Result{Success: false, Provider: "sendgrid", Error: err.Error()}
	}
	defer resp.Body.Close()

	// SendGrid answers 202 Accepted on success.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true, Provider: "sendgrid"}
	}
	msg, _ := io.ReadAll(resp.Body)
	return Result{Success: false, Provider: "sendgrid", Error: string(msg)}
}

var _ Provider = (*SendGrid)(nil)
