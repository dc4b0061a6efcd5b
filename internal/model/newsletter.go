// internal/model/newsletter.go
package model

const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"

	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

// NewsletterJob tracks one send request across all of its batches.
// SentCount and FailedCount only ever grow; TotalRecipients is fixed at
// creation and sent+failed never exceeds it.
type NewsletterJob struct {
	ID              string  `db:"id" json:"id"`
	CampaignName    string  `db:"campaign_name" json:"campaign_name"`
	Subject         string  `db:"subject" json:"subject"`
	Content         string  `db:"content" json:"content"`
	TemplateID      *string `db:"template_id" json:"template_id,omitempty"`
	TotalRecipients int     `db:"total_recipients" json:"total_recipients"`
	SentCount       int     `db:"sent_count" json:"sent_count"`
	FailedCount     int     `db:"failed_count" json:"failed_count"`
	Status          string  `db:"status" json:"status"`
	ScheduledAt     *int64  `db:"scheduled_at" json:"scheduled_at,omitempty"`
	StartedAt       *int64  `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *int64  `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       int64   `db:"created_at" json:"created_at"`
	UpdatedAt       int64   `db:"updated_at" json:"updated_at"`
}

// NewsletterSend is one row of the append-only send log. Rows are only ever
// inserted; counts live denormalized on the job row.
type NewsletterSend struct {
	ID     string  `db:"id" json:"id"`
	JobID  string  `db:"job_id" json:"job_id"`
	Email  string  `db:"email" json:"email"`
	Status string  `db:"status" json:"status"`
	Error  *string `db:"error" json:"error,omitempty"`
	SentAt int64   `db:"sent_at" json:"sent_at"`
}

// QueueStats aggregates newsletter jobs for the status endpoint.
type QueueStats struct {
	TotalJobs       int `json:"total_jobs"`
	Queued          int `json:"queued"`
	Processing      int `json:"processing"`
	Completed       int `json:"completed"`
	Failed          int `json:"failed"`
	TotalRecipients int `json:"total_recipients"`
	TotalSent       int `json:"total_sent"`
}
