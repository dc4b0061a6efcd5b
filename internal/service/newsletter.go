// internal/service/newsletter.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	appErrors "github.com/fooodis/fooodis-backend/internal/errors"
	"github.com/fooodis/fooodis-backend/internal/kv"
	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/repository"
)

// BatchSize is the fixed fan-out size: one queue message per 50 recipients.
const BatchSize = 50

const (
	SelectorAll    = "all"
	SelectorActive = "active"
	SelectorIDs    = "ids"

	ModeQueued = "queued"
	ModeManual = "manual"
)

// Selector names which subscribers a send request targets.
type Selector struct {
	Kind string
	IDs  []string
}

type EnqueueRequest struct {
	Subject      string
	Content      string
	TemplateID   *string
	CampaignName string
	ScheduledAt  *int64
	Recipients   Selector
}

type EnqueueResult struct {
	JobID      string
	Recipients int
	Batches    int
	Mode       string
}

// FallbackStore persists a job's full payload when no queue backend is bound.
type FallbackStore interface {
	StoreFallbackJob(ctx context.Context, job kv.FallbackJob) error
}

// NewsletterService accepts send requests, freezes the recipient list, and
// fans it out onto the queue in fixed-size batches.
type NewsletterService struct {
	Jobs        repository.NewsletterRepositoryInterface
	Subscribers repository.SubscriberRepositoryInterface
	Queue       queue.Queue   // nil when no broker is configured
	Fallback    FallbackStore // nil when no key-value store is bound
	Now         func() time.Time
}

func (s *NewsletterService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Enqueue validates the request, resolves recipients, persists the job row,
// and either queues batches or stores the payload for manual processing.
func (s *NewsletterService) Enqueue(ctx context.Context, req EnqueueRequest) (*EnqueueResult, error) {
	if req.Subject == "" || req.Content == "" {
		return nil, appErrors.NewValidation("Subject and content are required")
	}

	recipients, err := s.resolveRecipients(req.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, appErrors.NewValidation("No recipients found")
	}

	now := s.now().UnixMilli()
	jobID := "newsletter_" + uuid.NewString()

	campaignName := req.CampaignName
	if campaignName == "" {
		campaignName = fmt.Sprintf("Campaign %s", s.now().UTC().Format("2006-01-02"))
	}

	job := &model.NewsletterJob{
		ID:              jobID,
		CampaignName:    campaignName,
		Subject:         req.Subject,
		Content:         req.Content,
		TemplateID:      req.TemplateID,
		TotalRecipients: len(recipients),
		Status:          model.JobStatusQueued,
		ScheduledAt:     req.ScheduledAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Jobs.CreateJob(job); err != nil {
		return nil, err
	}
	observability.JobsEnqueued.Inc()

	if s.Queue != nil {
		batches := batchRecipients(recipients, BatchSize)
		for _, batch := range batches {
			msg := queue.Message{
				Type:       queue.TypeSendNewsletter,
				JobID:      jobID,
				Subject:    req.Subject,
				Content:    req.Content,
				Recipients: batch,
				Timestamp:  now,
			}
			if err := s.Queue.Publish(msg); err != nil {
				return nil, fmt.Errorf("failed to enqueue batch: %w", err)
			}
		}

		log.Info().
			Str("job_id", jobID).
			Int("recipients", len(recipients)).
			Int("batches", len(batches)).
			Msg("newsletter queued")

		return &EnqueueResult{
			JobID:      jobID,
			Recipients: len(recipients),
			Batches:    len(batches),
			Mode:       ModeQueued,
		}, nil
	}

	// Degrade gracefully: no broker means the job is stored whole for a human
	// or alternate process to drain. The job row above stays queryable.
	log.Info().Str("job_id", jobID).Msg("queue not available, storing job for manual processing")
	if s.Fallback != nil {
		err := s.Fallback.StoreFallbackJob(ctx, kv.FallbackJob{
			JobID:      jobID,
			Subject:    req.Subject,
			Content:    req.Content,
			Recipients: recipients,
			Status:     "pending_manual",
		})
		if err != nil {
			return nil, err
		}
	}

	return &EnqueueResult{
		JobID:      jobID,
		Recipients: len(recipients),
		Mode:       ModeManual,
	}, nil
}

func (s *NewsletterService) resolveRecipients(sel Selector) ([]model.Recipient, error) {
	switch sel.Kind {
	case SelectorAll:
		return s.Subscribers.AllSubscribed()
	case SelectorActive:
		return s.Subscribers.Active()
	case SelectorIDs:
		return s.Subscribers.ByIDs(sel.IDs)
	default:
		return nil, appErrors.NewValidation("Invalid recipients selector")
	}
}

// batchRecipients slices the list into size-limited chunks, preserving order.
func batchRecipients(recipients []model.Recipient, size int) [][]model.Recipient {
	batches := [][]model.Recipient{}
	for i := 0; i < len(recipients); i += size {
		end := i + size
		if end > len(recipients) {
			end = len(recipients)
		}
		batches = append(batches, recipients[i:end])
	}
	return batches
}
