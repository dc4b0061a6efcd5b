// internal/service/consumer.go
package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/provider"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/repository"
)

// Consumer drains queued newsletter batches: it sends each message through
// the provider adapter, appends per-recipient outcomes to the send log, and
// advances the job's running totals.
type Consumer struct {
	Jobs     repository.NewsletterRepositoryInterface
	Provider provider.Provider

	// PublicSiteURL is the base for generated unsubscribe links.
	PublicSiteURL string

	// SendDelay is a constant pause between sends, a courtesy to the email
	// provider rather than a strict rate limit.
	SendDelay time.Duration

	Now func() time.Time
}

func (c *Consumer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// HandleMessage processes one queue delivery. A nil return means handled
// (ack), whatever the per-recipient outcomes were; an error means crashed,
// and the queue runtime owns the retry.
func (c *Consumer) HandleMessage(ctx context.Context, msg queue.Message) error {
	if msg.Type != queue.TypeSendNewsletter {
		log.Warn().Str("type", msg.Type).Msg("unknown message type, ignoring")
		return nil
	}
	return c.processBatch(ctx, msg)
}

func (c *Consumer) processBatch(ctx context.Context, msg queue.Message) error {
	start := time.Now()
	log.Info().
		Str("job_id", msg.JobID).
		Int("recipients", len(msg.Recipients)).
		Msg("processing newsletter batch")

	// First touch flips the job to processing; repeat batches are a no-op.
	if err := c.Jobs.MarkProcessing(msg.JobID, c.now().UnixMilli()); err != nil {
		return err
	}

	sentCount := 0
	failedCount := 0

	for _, recipient := range msg.Recipients {
		html := PersonalizeContent(msg.Content, recipient, c.PublicSiteURL)
		result := c.Provider.Send(ctx, provider.SendRequest{
			To:      recipient.Email,
			ToName:  recipient.Name,
			Subject: msg.Subject,
			HTML:    html,
		})

		if result.Success {
			sentCount++
			c.logSend(msg.JobID, recipient.Email, model.SendStatusSent, "")
		} else {
			failedCount++
			c.logSend(msg.JobID, recipient.Email, model.SendStatusFailed, result.Error)
			log.Error().
				Str("job_id", msg.JobID).
				Str("email", recipient.Email).
				Str("error", result.Error).
				Msg("failed to send newsletter email")
		}
		observability.EmailsSent.WithLabelValues(sendStatus(result.Success), result.Provider).Inc()

		if c.SendDelay > 0 {
			time.Sleep(c.SendDelay)
		}
	}

	// One atomic increment per batch; the returned totals double as the
	// completion check, so concurrent batches never double-complete.
	sentTotal, failedTotal, total, err := c.Jobs.AddSendCounts(
		msg.JobID, sentCount, failedCount, c.now().UnixMilli())
	if err != nil {
		return err
	}

	if sentTotal+failedTotal >= total {
		if err := c.Jobs.MarkCompleted(msg.JobID, c.now().UnixMilli()); err != nil {
			return err
		}
		log.Info().Str("job_id", msg.JobID).Msg("newsletter job completed")
	}

	observability.BatchDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Str("job_id", msg.JobID).
		Int("sent", sentCount).
		Int("failed", failedCount).
		Msg("newsletter batch complete")

	return nil
}

// logSend appends to the send log. Logging failures don't affect the batch;
// the counts on the job row are authoritative.
func (c *Consumer) logSend(jobID, email, status, sendErr string) {
	row := &model.NewsletterSend{
		ID:     "send_" + uuid.NewString(),
		JobID:  jobID,
		Email:  email,
		Status: status,
		SentAt: c.now().UnixMilli(),
	}
	if sendErr != "" {
		row.Error = &sendErr
	}
	if err := c.Jobs.RecordSend(row); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Str("email", email).Msg("failed to record send")
	}
}

func sendStatus(success bool) string {
	if success {
		return model.SendStatusSent
	}
	return model.SendStatusFailed
}

// PersonalizeContent substitutes recipient placeholders into the newsletter
// body and builds the unsubscribe link from the recipient's own id and email.
func PersonalizeContent(content string, r model.Recipient, siteURL string) string {
	name := r.Name
	if name == "" {
		name = "Subscriber"
	}

	personalized := content
	personalized = strings.ReplaceAll(personalized, "{{name}}", name)
	personalized = strings.ReplaceAll(personalized, "{{email}}", r.Email)
	personalized = strings.ReplaceAll(personalized, "{{subscriber_id}}", r.ID)

	unsubscribeURL := siteURL + "/unsubscribe?id=" + r.ID + "&email=" + url.QueryEscape(r.Email)
	personalized = strings.ReplaceAll(personalized, "{{unsubscribe_url}}", unsubscribeURL)

	return personalized
}
