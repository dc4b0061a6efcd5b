package repository

import (
	"database/sql"

	appErrors "github.com/fooodis/fooodis-backend/internal/errors"
	"github.com/fooodis/fooodis-backend/internal/model"
)

type NewsletterRepositoryInterface interface {
	CreateJob(j *model.NewsletterJob) error
	GetJob(id string) (*model.NewsletterJob, error)
	MarkProcessing(id string, now int64) error
	AddSendCounts(id string, sent, failed int, now int64) (sentTotal, failedTotal, total int, err error)
	MarkCompleted(id string, now int64) error
	RecordSend(s *model.NewsletterSend) error
	RecentJobs(limit int) ([]model.NewsletterJob, error)
	Stats() (*model.QueueStats, error)
}

type NewsletterRepository struct {
	DB *sql.DB
}

// ====================== Jobs ======================

func (r *NewsletterRepository) CreateJob(j *model.NewsletterJob) error {
	if j.Status == "" {
		j.Status = model.JobStatusQueued
	}
	query := `
        INSERT INTO newsletter_jobs (
            id, campaign_name, subject, content, template_id,
            total_recipients, status, scheduled_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.Exec(query,
		j.ID, j.CampaignName, j.Subject, j.Content, j.TemplateID,
		j.TotalRecipients, j.Status, j.ScheduledAt, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

func (r *NewsletterRepository) GetJob(id string) (*model.NewsletterJob, error) {
	query := `
        SELECT id, campaign_name, subject, content, template_id,
               total_recipients, sent_count, failed_count, status,
               scheduled_at, started_at, completed_at, created_at, updated_at
        FROM newsletter_jobs WHERE id = $1
    `
	var j model.NewsletterJob
	err := r.DB.QueryRow(query, id).Scan(
		&j.ID, &j.CampaignName, &j.Subject, &j.Content, &j.TemplateID,
		&j.TotalRecipients, &j.SentCount, &j.FailedCount, &j.Status,
		&j.ScheduledAt, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewJobNotFound(id)
		}
		return nil, err
	}
	return &j, nil
}

// MarkProcessing records first touch of a job by a consumer. The status guard
// makes repeat batches for the same job a no-op.
func (r *NewsletterRepository) MarkProcessing(id string, now int64) error {
	query := `
        UPDATE newsletter_jobs
        SET status = 'processing', started_at = $1, updated_at = $1
        WHERE id = $2 AND status = 'queued'
    `
	_, err := r.DB.Exec(query, now, id)
	return err
}

// AddSendCounts applies one batch's tallies as relative increments so that
// concurrent batches compose correctly, and returns the running totals in the
// same statement.
func (r *NewsletterRepository) AddSendCounts(id string, sent, failed int, now int64) (int, int, int, error) {
	query := `
        UPDATE newsletter_jobs
        SET sent_count = sent_count + $1,
            failed_count = failed_count + $2,
            updated_at = $3
        WHERE id = $4
        RETURNING sent_count, failed_count, total_recipients
    `
	var sentTotal, failedTotal, total int
	err := r.DB.QueryRow(query, sent, failed, now, id).Scan(&sentTotal, &failedTotal, &total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, 0, appErrors.NewJobNotFound(id)
		}
		return 0, 0, 0, err
	}
	return sentTotal, failedTotal, total, nil
}

// MarkCompleted flips the job to completed. The status guard keeps the
// transition one-way even when several batches observe completion at once.
func (r *NewsletterRepository) MarkCompleted(id string, now int64) error {
	query := `
        UPDATE newsletter_jobs
        SET status = 'completed', completed_at = $1, updated_at = $1
        WHERE id = $2 AND status != 'completed'
    `
	_, err := r.DB.Exec(query, now, id)
	return err
}

// ====================== Send log ======================

// RecordSend appends one row to the send log. Rows are never updated.
func (r *NewsletterRepository) RecordSend(s *model.NewsletterSend) error {
	query := `
        INSERT INTO newsletter_sends (id, job_id, email, status, error, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, s.ID, s.JobID, s.Email, s.Status, s.Error, s.SentAt)
	return err
}

// ====================== Status surface ======================

func (r *NewsletterRepository) RecentJobs(limit int) ([]model.NewsletterJob, error) {
	query := `
        SELECT id, campaign_name, subject, content, template_id,
               total_recipients, sent_count, failed_count, status,
               scheduled_at, started_at, completed_at, created_at, updated_at
        FROM newsletter_jobs
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.NewsletterJob{}
	for rows.Next() {
		var j model.NewsletterJob
		if err := rows.Scan(
			&j.ID, &j.CampaignName, &j.Subject, &j.Content, &j.TemplateID,
			&j.TotalRecipients, &j.SentCount, &j.FailedCount, &j.Status,
			&j.ScheduledAt, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *NewsletterRepository) Stats() (*model.QueueStats, error) {
	query := `
        SELECT
            COUNT(*) AS total_jobs,
            COALESCE(SUM(CASE WHEN status = 'queued' THEN 1 ELSE 0 END), 0) AS queued,
            COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
            COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
            COALESCE(SUM(total_recipients), 0) AS total_recipients,
            COALESCE(SUM(sent_count), 0) AS total_sent
        FROM newsletter_jobs
    `
	var s model.QueueStats
	err := r.DB.QueryRow(query).Scan(
		&s.TotalJobs, &s.Queued, &s.Processing, &s.Completed,
		&s.Failed, &s.TotalRecipients, &s.TotalSent,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ NewsletterRepositoryInterface = (*NewsletterRepository)(nil)
