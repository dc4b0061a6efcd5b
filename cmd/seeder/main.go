// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/fooodis/fooodis-backend/internal/config"
	"github.com/fooodis/fooodis-backend/internal/db"
	"github.com/fooodis/fooodis-backend/internal/kv"
	"github.com/fooodis/fooodis-backend/internal/model"
	"github.com/fooodis/fooodis-backend/internal/observability"
)

// Seeds a development environment: subscribers, a couple of scheduled posts
// (one already due), and an automation path collection in the KV store.
func main() {
	_ = godotenv.Load()
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

	now := time.Now().UnixMilli()

	subscribers := []model.Subscriber{
		{ID: "sub_" + uuid.NewString(), Email: "alice@example.com", Name: "Alice", Status: model.SubscriberActive},
		{ID: "sub_" + uuid.NewString(), Email: "bob@example.com", Name: "Bob", Status: model.SubscriberActive},
		{ID: "sub_" + uuid.NewString(), Email: "carol@example.com", Name: "Carol", Status: "pending"},
		{ID: "sub_" + uuid.NewString(), Email: "dave@example.com", Name: "Dave", Status: model.SubscriberUnsubscribed},
	}
	for _, s := range subscribers {
		_, err := conn.Exec(
			`INSERT INTO email_subscribers (id, email, name, status) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Email, s.Name, s.Status,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed subscriber")
		}
	}
	fmt.Printf("Seeded %d subscribers\n", len(subscribers))

	posts := []struct {
		title     string
		scheduled int64
	}{
		{"Five summer recipes", now - time.Hour.Milliseconds()}, // already due
		{"Autumn menu preview", now + 24*time.Hour.Milliseconds()},
	}
	for _, p := range posts {
		_, err := conn.Exec(
			`INSERT INTO blog_posts (id, title, status, scheduled_date) VALUES ($1, $2, 'scheduled', $3) ON CONFLICT (id) DO NOTHING`,
			"post_"+uuid.NewString(), p.title, p.scheduled,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed post")
		}
	}
	fmt.Printf("Seeded %d scheduled posts\n", len(posts))

	kvStore := kv.NewStore(cfg.RedisAddr)
	wednesday := 3
	paths := []model.AutomationPath{
		{
			ID: "path_" + uuid.NewString(), Name: "Daily recipe roundup",
			Enabled: true, Status: model.PathStatusActive,
			Category: "recipes", Subcategory: "seasonal",
			Schedule: &model.PathSchedule{Frequency: model.FrequencyDaily, Time: "09:00"},
		},
		{
			ID: "path_" + uuid.NewString(), Name: "Weekly restaurant spotlight",
			Enabled: true, Status: model.PathStatusActive,
			Category: "restaurants", Subcategory: "local",
			Schedule: &model.PathSchedule{Frequency: model.FrequencyWeekly, Time: "10:00", DayOfWeek: &wednesday},
		},
	}
	if err := kvStore.SaveAutomationPaths(context.Background(), paths); err != nil {
		log.Fatal().Err(err).Msg("failed to seed automation paths")
	}
	fmt.Printf("Seeded %d automation paths\n", len(paths))

	fmt.Println("Database seeding completed successfully!")
}
