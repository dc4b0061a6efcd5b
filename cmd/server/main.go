// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/config"
	"github.com/fooodis/fooodis-backend/internal/controller"
	"github.com/fooodis/fooodis-backend/internal/db"
	"github.com/fooodis/fooodis-backend/internal/handler"
	"github.com/fooodis/fooodis-backend/internal/kv"
	"github.com/fooodis/fooodis-backend/internal/observability"
	"github.com/fooodis/fooodis-backend/internal/queue"
	"github.com/fooodis/fooodis-backend/internal/repository"
	"github.com/fooodis/fooodis-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on OS environment variables")
	}
	observability.SetupLogging()
	cfg := config.Load()

	// Init DB
	conn, err := db.Open(cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()
	if err := db.EnsureSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	kvStore := kv.NewStore(cfg.RedisAddr)

	// The queue is optional: without it, enqueued newsletters fall back to
	// manual mode instead of failing.
	var q queue.Queue
	var amqpQueue *queue.AMQPQueue
	if cfg.RabbitURL != "" {
		amqpQueue, err = queue.Dial(cfg.RabbitURL)
		if err != nil {
			log.Warn().Err(err).Msg("queue unavailable, newsletter enqueue will use manual fallback")
		} else {
			defer amqpQueue.Close()
			q = amqpQueue
		}
	}

	postRepo := &repository.PostRepository{DB: conn}
	subscriberRepo := &repository.SubscriberRepository{DB: conn}
	newsletterRepo := &repository.NewsletterRepository{DB: conn}
	activityRepo := &repository.ActivityLogRepository{DB: conn}

	publisher := &service.Publisher{
		Posts:    postRepo,
		Activity: activityRepo,
	}
	evaluator := &service.Evaluator{
		Paths:       kvStore,
		Activity:    activityRepo,
		MainSiteURL: cfg.MainSiteURL,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
	newsletterService := &service.NewsletterService{
		Jobs:        newsletterRepo,
		Subscribers: subscriberRepo,
		Queue:       q,
		Fallback:    kvStore,
	}

	newsletterController := &controller.NewsletterController{
		NewsletterService: newsletterService,
		Jobs:              newsletterRepo,
	}
	triggerHandler := &handler.TriggerHandler{
		Publisher: publisher,
		Evaluator: evaluator,
		DB:        conn,
		KV:        kvStore,
		Queue:     q,
		APIKey:    cfg.AutomationAPIKey,
	}

	// Hourly tick drives both background components; they are independent
	// and run concurrently.
	c := cron.New()
	_, err = c.AddFunc("0 * * * *", func() {
		runScheduledTick(publisher, evaluator)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register cron schedule")
	}
	c.Start()
	defer c.Stop()

	r := chi.NewRouter()

	r.Get("/", triggerHandler.ServiceInfo)
	r.Get("/metrics", observability.MetricsHandler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(triggerHandler.Authorize)
		r.Get("/status", triggerHandler.Status)
		r.Post("/trigger/publish", triggerHandler.TriggerPublish)
		r.Post("/trigger/automation", triggerHandler.TriggerAutomation)
	})

	// Newsletter routes
	r.Post("/api/newsletter/queue", newsletterController.EnqueueNewsletter)
	r.Get("/api/newsletter/queue", newsletterController.QueueStatus)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func runScheduledTick(publisher *service.Publisher, evaluator *service.Evaluator) {
	log.Info().Time("at", time.Now().UTC()).Msg("cron tick")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if _, err := publisher.PublishDuePosts(); err != nil {
			log.Error().Err(err).Msg("scheduled publish failed")
		}
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := evaluator.RunDuePaths(ctx); err != nil {
			log.Error().Err(err).Msg("automation run failed")
		}
	}()

	wg.Wait()
}
