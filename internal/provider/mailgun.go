// internal/provider/mailgun.go
package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Mailgun sends through the Mailgun messages API.
type Mailgun struct {
	APIKey  string
	Domain  string
	From    string
	Client  *http.Client
	BaseURL string // overridable in tests
}

func (m *Mailgun) Name() string { return "mailgun" }

func (m *Mailgun) Send(ctx context.Context, req SendRequest) Result {
	if m.APIKey == "" {
		return Result{Success: false, Provider: "mailgun", Error: "Mailgun API key not configured"}
	}

	to := req.To
	if req.ToName != "" {
		to = fmt.Sprintf("%s <%s>", req.ToName, req.To)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("from", m.From)
	form.WriteField("to", to)
	form.WriteField("subject", req.Subject)
	form.WriteField("html", req.HTML)
	if err := form.Close(); err != nil {
		return Result{Success: false, Provider: "mailgun", Error: err.Error()}
	}

	base := m.BaseURL
	if base == "" {
		base = "https://api.mailgun.net"
	}
	url := fmt.Sprintf("%s/v3/%s/messages", base, m.Domain)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Result{Success: false, Provider: "mailgun", Error: err.Error()}
	}
	httpReq.SetBasicAuth("api", m.APIKey)
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := m.Client.Do(httpReq)
	if err != nil {
		return Result{Success: false, Provider: "mailgun", Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true, Provider: "mailgun"}
	}
	msg, _ := io.ReadAll(resp.Body)
	return Result{Success: false, Provider: "mailgun", Error: string(msg)}
}

var _ Provider = (*Mailgun)(nil)
