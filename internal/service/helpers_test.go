package service_test

import (
	"fmt"
	"sync"

	appErrors "github.com/fooodis/fooodis-backend/internal/errors"
	"github.com/fooodis/fooodis-backend/internal/model"
)

// --- Shared mocks ---

// activityRecorder captures activity-log entries.
type activityRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

type recordedActivity struct {
	Action  string
	Details interface{}
}

func (a *activityRecorder) Log(action string, details interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, recordedActivity{Action: action, Details: details})
	return nil
}

// memJobStore is an in-memory NewsletterRepositoryInterface safe for
// concurrent batches.
type memJobStore struct {
	mu    sync.Mutex
	jobs  map[string]*model.NewsletterJob
	sends []model.NewsletterSend
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[string]*model.NewsletterJob{}}
}

func (m *memJobStore) CreateJob(j *model.NewsletterJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *j
	m.jobs[j.ID] = &copied
	return nil
}

func (m *memJobStore) GetJob(id string) (*model.NewsletterJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, appErrors.NewJobNotFound(id)
	}
	copied := *j
	return &copied, nil
}

func (m *memJobStore) MarkProcessing(id string, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return appErrors.NewJobNotFound(id)
	}
	if j.Status == model.JobStatusQueued {
		j.Status = model.JobStatusProcessing
		j.StartedAt = &now
		j.UpdatedAt = now
	}
	return nil
}

func (m *memJobStore) AddSendCounts(id string, sent, failed int, now int64) (int, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return 0, 0, 0, appErrors.NewJobNotFound(id)
	}
	j.SentCount += sent
	j.FailedCount += failed
	j.UpdatedAt = now
	return j.SentCount, j.FailedCount, j.TotalRecipients, nil
}

func (m *memJobStore) MarkCompleted(id string, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return appErrors.NewJobNotFound(id)
	}
	if j.Status != model.JobStatusCompleted {
		j.Status = model.JobStatusCompleted
		j.CompletedAt = &now
		j.UpdatedAt = now
	}
	return nil
}

func (m *memJobStore) RecordSend(s *model.NewsletterSend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, *s)
	return nil
}

func (m *memJobStore) RecentJobs(limit int) ([]model.NewsletterJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := []model.NewsletterJob{}
	for _, j := range m.jobs {
		jobs = append(jobs, *j)
		if len(jobs) == limit {
			break
		}
	}
	return jobs, nil
}

func (m *memJobStore) Stats() (*model.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.QueueStats{}
	for _, j := range m.jobs {
		s.TotalJobs++
		switch j.Status {
		case model.JobStatusQueued:
			s.Queued++
		case model.JobStatusProcessing:
			s.Processing++
		case model.JobStatusCompleted:
			s.Completed++
		}
		s.TotalRecipients += j.TotalRecipients
		s.TotalSent += j.SentCount
	}
	return s, nil
}

func (m *memJobStore) sendRows() []model.NewsletterSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.NewsletterSend, len(m.sends))
	copy(out, m.sends)
	return out
}

func makeRecipients(n int) []model.Recipient {
	recipients := make([]model.Recipient, n)
	for i := range recipients {
		recipients[i] = model.Recipient{
			ID:    fmt.Sprintf("sub%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
			Name:  fmt.Sprintf("User %d", i),
		}
	}
	return recipients
}
