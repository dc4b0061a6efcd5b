// internal/kv/kv.go
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fooodis/fooodis-backend/internal/model"
)

const (
	pathsKey       = "automation-paths"
	apiKeyKey      = "AUTOMATION_API_KEY"
	fallbackPrefix = "newsletter_job:"

	// Fallback payloads expire after 7 days if nobody drains them manually.
	fallbackTTL = 7 * 24 * time.Hour
)

// Store wraps the redis key-value store used for automation-path config and
// the manual-mode newsletter fallback.
type Store struct {
	client *redis.Client
}

func NewStore(addr string) *Store {
	return &Store{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AutomationPaths reads the whole path collection. A missing key is a no-op
// for the evaluator, not an error.
func (s *Store) AutomationPaths(ctx context.Context) ([]model.AutomationPath, error) {
	raw, err := s.client.Get(ctx, pathsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var paths []model.AutomationPath
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// SaveAutomationPaths replaces the path collection blob. Used by seeding and
// the admin config surface, never by the evaluator.
func (s *Store) SaveAutomationPaths(ctx context.Context, paths []model.AutomationPath) error {
	payload, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, pathsKey, payload, 0).Err()
}

// FallbackJob is the payload stored when no queue backend is configured.
type FallbackJob struct {
	JobID      string            `json:"jobId"`
	Subject    string            `json:"subject"`
	Content    string            `json:"content"`
	Recipients []model.Recipient `json:"recipients"`
	Status     string            `json:"status"`
}

func (s *Store) StoreFallbackJob(ctx context.Context, job FallbackJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fallbackPrefix+job.JobID, payload, fallbackTTL).Err()
}

func (s *Store) FallbackJob(ctx context.Context, jobID string) (*FallbackJob, error) {
	raw, err := s.client.Get(ctx, fallbackPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var job FallbackJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// APIKey returns the trigger-surface bearer token, if one is set. An empty
// key leaves the surface open, which is intended for first-run setups.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	key, err := s.client.Get(ctx, apiKeyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}
