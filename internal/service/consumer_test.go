package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/provider"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/service"
)

// scriptedProvider fails the addresses listed in failFor.
type scriptedProvider struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []provider.SendRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Send(ctx context.Context, req provider.SendRequest) provider.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, req)
	if p.failFor[req.To] {
		return provider.Result{Success: false, Provider: "scripted", Error: "mailbox unavailable"}
	}
	return provider.Result{Success: true, Provider: "scripted"}
}

func newTestJob(store *memJobStore, id string, total int) {
	store.CreateJob(&model.NewsletterJob{
		ID:              id,
		Subject:         "Hello",
		Content:         "Hi {{name}}",
		TotalRecipients: total,
		Status:          model.JobStatusQueued,
	})
}

func batchMessage(jobID string, recipients []model.Recipient) queue.Message {
	return queue.Message{
		Type:       queue.TypeSendNewsletter,
		JobID:      jobID,
		Subject:    "Hello",
		Content:    "Hi {{name}}",
		Recipients: recipients,
	}
}

func TestConsumerCompletesJobAcrossBatches(t *testing.T) {
	recipients := makeRecipients(5)
	batches := [][]model.Recipient{recipients[:3], recipients[3:]}

	orders := [][]int{{0, 1}, {1, 0}}
	for _, order := range orders {
		store := newMemJobStore()
		newTestJob(store, "job1", 5)
		consumer := &service.Consumer{
			Jobs:          store,
			Provider:      &scriptedProvider{},
			PublicSiteURL: "https://fooodis.com",
		}

		for _, i := range order {
			require.NoError(t, consumer.HandleMessage(context.Background(), batchMessage("job1", batches[i])))
		}

		job, err := store.GetJob("job1")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, job.Status, "order %v", order)
		assert.Equal(t, 5, job.SentCount)
		assert.Equal(t, 0, job.FailedCount)
		assert.NotNil(t, job.CompletedAt)
		assert.NotNil(t, job.StartedAt)
	}
}

func TestConsumerRecordsFailedSends(t *testing.T) {
	recipients := makeRecipients(3)
	store := newMemJobStore()
	newTestJob(store, "job1", 3)

	prov := &scriptedProvider{failFor: map[string]bool{recipients[1].Email: true}}
	consumer := &service.Consumer{
		Jobs:          store,
		Provider:      prov,
		PublicSiteURL: "https://fooodis.com",
	}

	require.NoError(t, consumer.HandleMessage(context.Background(), batchMessage("job1", recipients)))

	job, err := store.GetJob("job1")
	require.NoError(t, err)
	assert.Equal(t, 2, job.SentCount)
	assert.Equal(t, 1, job.FailedCount)
	assert.Equal(t, model.JobStatusCompleted, job.Status)

	rows := store.sendRows()
	var failedRow *model.NewsletterSend
	for i := range rows {
		if rows[i].Status == model.SendStatusFailed {
			failedRow = &rows[i]
		}
	}
	require.NotNil(t, failedRow)
	assert.Equal(t, recipients[1].Email, failedRow.Email)
	require.NotNil(t, failedRow.Error)
	assert.Equal(t, "mailbox unavailable", *failedRow.Error)
}

func TestConsumerConcurrentBatchesNeverDoubleCount(t *testing.T) {
	recipients := makeRecipients(2)
	store := newMemJobStore()
	newTestJob(store, "job1", 2)

	consumer := &service.Consumer{
		Jobs:          store,
		Provider:      &scriptedProvider{},
		PublicSiteURL: "https://fooodis.com",
	}

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			err := consumer.HandleMessage(context.Background(),
				batchMessage("job1", recipients[i:i+1]))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	job, err := store.GetJob("job1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.SentCount+job.FailedCount)
}

func TestConsumerIgnoresUnknownMessageTypes(t *testing.T) {
	store := newMemJobStore()
	newTestJob(store, "job1", 1)

	consumer := &service.Consumer{
		Jobs:     store,
		Provider: &scriptedProvider{},
	}

	err := consumer.HandleMessage(context.Background(), queue.Message{
		Type:  "send_push_notification",
		JobID: "job1",
	})
	require.NoError(t, err)

	job, _ := store.GetJob("job1")
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Empty(t, store.sendRows())
}

func TestConsumerRepeatBatchesSkipProcessingFlip(t *testing.T) {
	recipients := makeRecipients(4)
	store := newMemJobStore()
	newTestJob(store, "job1", 4)

	started := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	later := started.Add(10 * time.Minute)

	consumer := &service.Consumer{
		Jobs:     store,
		Provider: &scriptedProvider{},
		Now:      func() time.Time { return started },
	}
	require.NoError(t, consumer.HandleMessage(context.Background(), batchMessage("job1", recipients[:2])))

	consumer.Now = func() time.Time { return later }
	require.NoError(t, consumer.HandleMessage(context.Background(), batchMessage("job1", recipients[2:])))

	job, err := store.GetJob("job1")
	require.NoError(t, err)
	require.NotNil(t, job.StartedAt)
	// started_at belongs to the first batch; the second one didn't re-flip it.
	assert.Equal(t, started.UnixMilli(), *job.StartedAt)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
}

func TestPersonalizeContent(t *testing.T) {
	recipient := model.Recipient{ID: "sub42", Email: "ann@example.com", Name: "Ann"}

	out := service.PersonalizeContent("Hi {{name}}, bye", recipient, "https://fooodis.com")
	assert.Equal(t, "Hi Ann, bye", out)

	out = service.PersonalizeContent("Hi {{name}}, bye", model.Recipient{Email: "x@example.com"}, "https://fooodis.com")
	assert.Equal(t, "Hi Subscriber, bye", out)

	out = service.PersonalizeContent(
		"{{email}} {{subscriber_id}} {{unsubscribe_url}}", recipient, "https://fooodis.com")
	assert.Equal(t,
		"ann@example.com sub42 https://fooodis.com/unsubscribe?id=sub42&email=ann%40example.com",
		out)
}
