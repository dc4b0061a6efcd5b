// internal/service/automation.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/repository"
)

const defaultScheduleHour = 9

// PathSource loads the automation-path collection from the key-value store.
type PathSource interface {
	AutomationPaths(ctx context.Context) ([]model.AutomationPath, error)
}

type PathRunResult struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type EvaluatorResult struct {
	PathsChecked int             `json:"pathsChecked"`
	Results      []PathRunResult `json:"results"`
}

// Evaluator decides which automation paths are due this hour and triggers
// content generation on the host site for each.
type Evaluator struct {
	Paths       PathSource
	Activity    repository.ActivityLogInterface
	MainSiteURL string
	Client      *http.Client
	Now         func() time.Time
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ShouldRun reports whether a path's schedule matches now. Pure so it can be
// tested apart from any I/O. The predicate matches every invocation within
// the scheduled hour; exactly-once-per-day behavior relies on the trigger
// firing once per hour.
func ShouldRun(s *model.PathSchedule, now time.Time) bool {
	if s == nil {
		return false
	}

	utc := now.UTC()

	scheduledHour := defaultScheduleHour
	if s.Time != "" {
		if h, err := strconv.Atoi(strings.SplitN(s.Time, ":", 2)[0]); err == nil {
			scheduledHour = h
		}
	}
	if utc.Hour() != scheduledHour {
		return false
	}

	switch s.Frequency {
	case model.FrequencyHourly, model.FrequencyDaily:
		return true
	case model.FrequencyWeekly:
		return s.DayOfWeek == nil || int(utc.Weekday()) == *s.DayOfWeek
	case model.FrequencyMonthly:
		// dayOfMonth=31 simply never matches in shorter months.
		return s.DayOfMonth == nil || utc.Day() == *s.DayOfMonth
	default:
		return false
	}
}

// RunDuePaths evaluates every active path once. An empty or missing path
// collection is a no-op, not an error; a failed generation call is recorded
// per path and never aborts the batch.
func (e *Evaluator) RunDuePaths(ctx context.Context) (*EvaluatorResult, error) {
	paths, err := e.Paths.AutomationPaths(ctx)
	if err != nil {
		return nil, err
	}

	activePaths := make([]model.AutomationPath, 0, len(paths))
	for _, p := range paths {
		if p.Enabled && p.Status == model.PathStatusActive {
			activePaths = append(activePaths, p)
		}
	}

	result := &EvaluatorResult{PathsChecked: len(activePaths), Results: []PathRunResult{}}
	if len(activePaths) == 0 {
		log.Info().Msg("no active automation paths")
		return result, nil
	}

	now := e.now()
	for _, path := range activePaths {
		if !ShouldRun(path.Schedule, now) {
			continue
		}

		log.Info().Str("path", path.Name).Msg("running automation path")
		run := e.triggerGeneration(ctx, path)
		if run.Success {
			observability.PathsTriggered.WithLabelValues("success").Inc()
		} else {
			observability.PathsTriggered.WithLabelValues("error").Inc()
		}
		result.Results = append(result.Results, run)
	}

	if err := e.Activity.Log("automation_run", map[string]interface{}{
		"pathsChecked": result.PathsChecked,
		"results":      result.Results,
	}); err != nil {
		log.Error().Err(err).Msg("failed to log automation activity")
	}

	return result, nil
}

func (e *Evaluator) triggerGeneration(ctx context.Context, path model.AutomationPath) PathRunResult {
	payload, _ := json.Marshal(map[string]string{
		"pathId":      path.ID,
		"category":    path.Category,
		"subcategory": path.Subcategory,
		"triggeredBy": "scheduler",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.MainSiteURL+"/api/automation/generate", bytes.NewReader(payload))
	if err != nil {
		return PathRunResult{Path: path.Name, Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("path", path.Name).Msg("failed to run automation path")
		return PathRunResult{Path: path.Name, Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	var generated struct {
		Success bool   `json:"success"`
		PostID  string `json:"postId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		log.Error().Err(err).Str("path", path.Name).Msg("invalid generation response")
		return PathRunResult{Path: path.Name, Success: false, Error: err.Error()}
	}

	return PathRunResult{Path: path.Name, Success: generated.Success, PostID: generated.PostID}
}
