// internal/handler/trigger_handler.go
package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/kv"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/service"
)

// TriggerHandler exposes the manual trigger surface for the background
// workers: status, publish, and automation.
type TriggerHandler struct {
	Publisher *service.Publisher
	Evaluator *service.Evaluator

	DB    *sql.DB
	KV    *kv.Store
	Queue queue.Queue

	// APIKey is the env-configured fallback; a key in the KV store wins.
	APIKey string
}

// Authorize compares the bearer token against the configured key. With no
// key configured the surface stays open, intended for first-run setups.
func (h *TriggerHandler) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := h.APIKey
		if h.KV != nil {
			if key, err := h.KV.APIKey(r.Context()); err == nil && key != "" {
				expected = key
			}
		}

		if expected != "" && r.Header.Get("Authorization") != "Bearer "+expected {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServiceInfo handles GET /.
func (h *TriggerHandler) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service": "Fooodis Automation Scheduler",
		"endpoints": []string{
			"GET /status - Check worker status",
			"POST /trigger/publish - Trigger scheduled post publishing",
			"POST /trigger/automation - Trigger automation paths",
		},
	})
}

// Status handles GET /status and reports which backends are bound.
func (h *TriggerHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	kvUp := false
	if h.KV != nil {
		kvUp = h.KV.Ping(ctx) == nil
	}
	dbUp := false
	if h.DB != nil {
		dbUp = h.DB.PingContext(ctx) == nil
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"bindings": map[string]bool{
			"db":    dbUp,
			"kv":    kvUp,
			"queue": h.Queue != nil,
		},
	})
}

// TriggerPublish handles POST /trigger/publish.
func (h *TriggerHandler) TriggerPublish(w http.ResponseWriter, r *http.Request) {
	result, err := h.Publisher.PublishDuePosts()
	if err != nil {
		log.Error().Err(err).Msg("manual publish trigger failed")
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"published": result.Published,
		"posts":     result.Posts,
	})
}

// TriggerAutomation handles POST /trigger/automation.
func (h *TriggerHandler) TriggerAutomation(w http.ResponseWriter, r *http.Request) {
	result, err := h.Evaluator.RunDuePaths(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("manual automation trigger failed")
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": result.Results,
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
