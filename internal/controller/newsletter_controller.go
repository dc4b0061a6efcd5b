// internal/controller/newsletter_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	appErrors "github.com/fooodis/fooodis-backend/internal/errors"
	"github.com/fooodis/fooodis-backend/internal/repository"
	"github.com/fooodis/fooodis-backend/internal/service"
)

const recentJobsLimit = 20

type NewsletterController struct {
	NewsletterService *service.NewsletterService
	Jobs              repository.NewsletterRepositoryInterface
}

// EnqueueNewsletter handles POST /api/newsletter/queue.
func (c *NewsletterController) EnqueueNewsletter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject      string          `json:"subject"`
		Content      string          `json:"content"`
		TemplateID   *string         `json:"templateId"`
		Recipients   json.RawMessage `json:"recipients"`
		ScheduledAt  *int64          `json:"scheduledAt"`
		CampaignName string          `json:"campaignName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	selector, err := parseSelector(body.Recipients)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := c.NewsletterService.Enqueue(r.Context(), service.EnqueueRequest{
		Subject:      body.Subject,
		Content:      body.Content,
		TemplateID:   body.TemplateID,
		CampaignName: body.CampaignName,
		ScheduledAt:  body.ScheduledAt,
		Recipients:   selector,
	})
	if err != nil {
		var validationErr *appErrors.ErrValidation
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Reason)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Mode == service.ModeManual {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"jobId":      result.JobID,
			"recipients": result.Recipients,
			"mode":       service.ModeManual,
			"message":    "Newsletter stored for processing (queue not configured)",
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"jobId":   result.JobID,
		"queued":  result.Recipients,
		"batches": result.Batches,
		"message": fmt.Sprintf("Newsletter queued for %d recipients", result.Recipients),
	})
}

// QueueStatus handles GET /api/newsletter/queue. With a jobId it returns that
// job verbatim; without one it returns aggregate stats plus recent jobs.
func (c *NewsletterController) QueueStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	w.Header().Set("Content-Type", "application/json")

	if jobID != "" {
		job, err := c.Jobs.GetJob(jobID)
		if err != nil {
			var notFound *appErrors.ErrJobNotFound
			if errors.As(err, &notFound) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   "Job not found",
				})
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"job":     job,
		})
		return
	}

	stats, err := c.Jobs.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jobs, err := c.Jobs.RecentJobs(recentJobsLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"stats":      stats,
		"recentJobs": jobs,
	})
}

// parseSelector accepts the wire forms "all", "active", or an id array.
func parseSelector(raw json.RawMessage) (service.Selector, error) {
	if len(raw) == 0 {
		return service.Selector{}, errors.New("recipients is required")
	}

	var literal string
	if err := json.Unmarshal(raw, &literal); err == nil {
		switch literal {
		case service.SelectorAll:
			return service.Selector{Kind: service.SelectorAll}, nil
		case service.SelectorActive:
			return service.Selector{Kind: service.SelectorActive}, nil
		default:
			return service.Selector{}, fmt.Errorf("unknown recipients value: %s", literal)
		}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return service.Selector{Kind: service.SelectorIDs, IDs: ids}, nil
	}

	return service.Selector{}, errors.New("recipients must be \"all\", \"active\", or an array of ids")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
