// internal/observability/observability.go
package observability

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fooodis_posts_published_total",
		Help: "Scheduled posts flipped to published",
	})

	PathsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fooodis_automation_paths_triggered_total",
		Help: "Automation paths fired, by outcome",
	}, []string{"result"}) // result: success, error

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fooodis_newsletter_emails_total",
		Help: "Newsletter send attempts, by status and provider",
	}, []string{"status", "provider"})

	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fooodis_newsletter_jobs_enqueued_total",
		Help: "Newsletter jobs accepted for sending",
	})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fooodis_newsletter_batch_duration_seconds",
		Help:    "Duration of one consumed newsletter batch",
		Buckets: prometheus.LinearBuckets(0.5, 1, 10),
	})
)

// SetupLogging configures the global zerolog logger for the binaries.
func SetupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

// MetricsHandler exposes the prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
