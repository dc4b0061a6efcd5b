// internal/provider/resend.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Resend sends through the Resend emails API.
type Resend struct {
	APIKey  string
	From    string
	Client  *http.Client
	BaseURL string // overridable in tests
}

func (r *Resend) Name() string { return "resend" }

func (r *Resend) Send(ctx context.Context, req SendRequest) Result {
	if r.APIKey == "" {
		return Result{Success: false, Provider: "resend", Error: "Resend API key not configured"}
	}

	payload := map[string]interface{}{
		"from":    r.From,
		"to":      []string{req.To},
		"subject": req.Subject,
		"html":    req.HTML,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Provider: "resend", Error: err.Error()}
	}

	base := r.BaseURL
	if base == "" {
		base = "https://api.resend.com"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/emails", bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Provider: "resend", Error: err.Error()}
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return Result{Success: false, Provider: "resend", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true, Provider: "resend"}
	}
	msg, _ := io.ReadAll(resp.Body)
	return Result{Success: false, Provider: "resend", Error: string(msg)}
}

var _ Provider = (*Resend)(nil)
