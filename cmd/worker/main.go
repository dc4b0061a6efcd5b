// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/fooodis/fooodis-backend/internal/config"
	"github.com/fooodis/fooodis-backend/internal/db"
	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/provider"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/repository"
	"github.com/fooodis/fooodis-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on OS environment variables")
	}
	observability.SetupLogging()
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()
	if err := db.EnsureSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	// The worker is pointless without a broker, so this one fails fast.
	amqpQueue, err := queue.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to queue")
	}
	defer amqpQueue.Close()

	emailProvider := provider.FromConfig(cfg)
	consumer := &service.Consumer{
		Jobs:          &repository.NewsletterRepository{DB: conn},
		Provider:      emailProvider,
		PublicSiteURL: cfg.PublicSiteURL,
		SendDelay:     cfg.SendDelay,
	}

	startStatusServer(cfg.MetricsAddr, emailProvider.Name())

	deliveries, err := amqpQueue.Consume()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				handleDelivery(ctx, consumer, d)
			}
		}
	}()

	log.Info().Str("provider", emailProvider.Name()).Msg("worker running, waiting for messages")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received, stopping worker")
	cancel()
	<-done
	log.Info().Msg("worker stopped")
}

func handleDelivery(ctx context.Context, consumer *service.Consumer, d amqp.Delivery) {
	var msg queue.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		// Malformed messages would never succeed; drop them.
		log.Error().Err(err).Msg("invalid queue message")
		d.Ack(false)
		return
	}

	if err := consumer.HandleMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("job_id", msg.JobID).Msg("batch processing crashed, requeueing")
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

// startStatusServer exposes metrics plus a small status page reporting the
// active provider.
func startStatusServer(addr, providerName string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service":   "Fooodis Newsletter Consumer",
			"status":    "active",
			"provider":  providerName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("status server failed")
		}
	}()
}
