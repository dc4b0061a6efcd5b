// internal/provider/console.go
package provider

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Console is the development default: it logs instead of sending.
type Console struct{}

func (c *Console) Name() string { return "console" }

func (c *Console) Send(ctx context.Context, req SendRequest) Result {
	log.Info().
		Str("to", req.To).
		Str("subject", req.Subject).
		Msg("[DEV] would send email")
	return Result{Success: true, Provider: "console"}
}

var _ Provider = (*Console)(nil)
