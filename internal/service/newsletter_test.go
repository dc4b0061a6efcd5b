package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/fooodis/fooodis-backend/internal/errors"
	"github.com/fooodis/fooodis-backend/internal/kv"
	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/service"
)

// stubSubscriberRepo serves fixed recipient lists per selector.
type stubSubscriberRepo struct {
	all    []model.Recipient
	active []model.Recipient
	byID   map[string]model.Recipient
}

func (s *stubSubscriberRepo) AllSubscribed() ([]model.Recipient, error) { return s.all, nil }
func (s *stubSubscriberRepo) Active() ([]model.Recipient, error)        { return s.active, nil }
func (s *stubSubscriberRepo) ByIDs(ids []string) ([]model.Recipient, error) {
	out := []model.Recipient{}
	for _, id := range ids {
		if r, ok := s.byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fallbackRecorder struct {
	stored []kv.FallbackJob
}

func (f *fallbackRecorder) StoreFallbackJob(ctx context.Context, job kv.FallbackJob) error {
	f.stored = append(f.stored, job)
	return nil
}

func TestEnqueueValidatesSubjectAndContent(t *testing.T) {
	svc := &service.NewsletterService{
		Jobs:        newMemJobStore(),
		Subscribers: &stubSubscriberRepo{},
	}

	_, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "",
		Content:    "body",
		Recipients: service.Selector{Kind: service.SelectorAll},
	})
	var validationErr *appErrors.ErrValidation
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "subject",
		Content:    "",
		Recipients: service.Selector{Kind: service.SelectorAll},
	})
	require.ErrorAs(t, err, &validationErr)
}

func TestEnqueueFailsWithZeroRecipients(t *testing.T) {
	svc := &service.NewsletterService{
		Jobs:        newMemJobStore(),
		Subscribers: &stubSubscriberRepo{},
		Queue:       queue.NewInMemoryQueue(),
	}

	_, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "Hello",
		Content:    "Body",
		Recipients: service.Selector{Kind: service.SelectorActive},
	})
	var validationErr *appErrors.ErrValidation
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "No recipients found", validationErr.Reason)
}

func TestEnqueueBatchesFixedSizePreservingOrder(t *testing.T) {
	recipients := makeRecipients(123)
	jobs := newMemJobStore()
	q := queue.NewInMemoryQueue()

	svc := &service.NewsletterService{
		Jobs:        jobs,
		Subscribers: &stubSubscriberRepo{all: recipients},
		Queue:       q,
	}

	result, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "Weekly digest",
		Content:    "Hi {{name}}",
		Recipients: service.Selector{Kind: service.SelectorAll},
	})
	require.NoError(t, err)

	assert.Equal(t, 123, result.Recipients)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, service.ModeQueued, result.Mode)

	messages := q.Messages()
	require.Len(t, messages, 3)
	assert.Len(t, messages[0].Recipients, 50)
	assert.Len(t, messages[1].Recipients, 50)
	assert.Len(t, messages[2].Recipients, 23)

	// Every recipient exactly once, original order preserved.
	flat := []model.Recipient{}
	for _, msg := range messages {
		assert.Equal(t, queue.TypeSendNewsletter, msg.Type)
		assert.Equal(t, result.JobID, msg.JobID)
		flat = append(flat, msg.Recipients...)
	}
	require.Equal(t, recipients, flat)

	// The job row freezes the recipient count.
	job, err := jobs.GetJob(result.JobID)
	require.NoError(t, err)
	assert.Equal(t, 123, job.TotalRecipients)
	assert.Equal(t, model.JobStatusQueued, job.Status)
}

func TestEnqueueExplicitIDSelector(t *testing.T) {
	byID := map[string]model.Recipient{
		"s1": {ID: "s1", Email: "one@example.com"},
		"s2": {ID: "s2", Email: "two@example.com"},
	}
	q := queue.NewInMemoryQueue()
	svc := &service.NewsletterService{
		Jobs:        newMemJobStore(),
		Subscribers: &stubSubscriberRepo{byID: byID},
		Queue:       q,
	}

	result, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "Hi",
		Content:    "Body",
		Recipients: service.Selector{Kind: service.SelectorIDs, IDs: []string{"s1", "s2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.Equal(t, 1, result.Batches)
}

func TestEnqueueFallsBackToManualModeWithoutQueue(t *testing.T) {
	recipients := makeRecipients(5)
	fallback := &fallbackRecorder{}
	jobs := newMemJobStore()

	svc := &service.NewsletterService{
		Jobs:        jobs,
		Subscribers: &stubSubscriberRepo{all: recipients},
		Fallback:    fallback,
	}

	result, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "Hi",
		Content:    "Body",
		Recipients: service.Selector{Kind: service.SelectorAll},
	})
	require.NoError(t, err)

	assert.Equal(t, service.ModeManual, result.Mode)
	assert.Equal(t, 5, result.Recipients)

	require.Len(t, fallback.stored, 1)
	assert.Equal(t, result.JobID, fallback.stored[0].JobID)
	assert.Equal(t, recipients, fallback.stored[0].Recipients)
	assert.Equal(t, "pending_manual", fallback.stored[0].Status)

	// The job row exists and is queryable even in manual mode.
	job, err := jobs.GetJob(result.JobID)
	require.NoError(t, err)
	assert.Equal(t, 5, job.TotalRecipients)
}

func TestEnqueueUnknownSelector(t *testing.T) {
	svc := &service.NewsletterService{
		Jobs:        newMemJobStore(),
		Subscribers: &stubSubscriberRepo{},
	}

	_, err := svc.Enqueue(context.Background(), service.EnqueueRequest{
		Subject:    "Hi",
		Content:    "Body",
		Recipients: service.Selector{Kind: "everyone"},
	})
	var validationErr *appErrors.ErrValidation
	require.True(t, errors.As(err, &validationErr))
}
