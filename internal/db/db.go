// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return conn, nil
}

// EnsureSchema creates the tables the workers depend on. Idempotent.
// Timestamps are epoch milliseconds (BIGINT) across the platform.
func EnsureSchema(conn *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS blog_posts (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'draft',
        scheduled_date BIGINT,
        published_date BIGINT,
        updated_at BIGINT
    );
    CREATE INDEX IF NOT EXISTS idx_blog_posts_status ON blog_posts (status);

    CREATE TABLE IF NOT EXISTS email_subscribers (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL,
        name TEXT,
        status TEXT NOT NULL DEFAULT 'active'
    );

    CREATE TABLE IF NOT EXISTS newsletter_jobs (
        id TEXT PRIMARY KEY,
        campaign_name TEXT,
        subject TEXT NOT NULL,
        content TEXT NOT NULL,
        template_id TEXT,
        total_recipients INTEGER DEFAULT 0,
        sent_count INTEGER DEFAULT 0,
        failed_count INTEGER DEFAULT 0,
        status TEXT DEFAULT 'queued',
        scheduled_at BIGINT,
        started_at BIGINT,
        completed_at BIGINT,
        created_at BIGINT,
        updated_at BIGINT
    );

    CREATE TABLE IF NOT EXISTS newsletter_sends (
        id TEXT PRIMARY KEY,
        job_id TEXT NOT NULL,
        email TEXT NOT NULL,
        status TEXT NOT NULL,
        error TEXT,
        sent_at BIGINT
    );
    CREATE INDEX IF NOT EXISTS idx_newsletter_sends_job ON newsletter_sends (job_id);

    CREATE TABLE IF NOT EXISTS activity_log (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        action TEXT NOT NULL,
        details TEXT,
        created_at BIGINT
    );
    `
	_, err := conn.Exec(schema)
	return err
}
