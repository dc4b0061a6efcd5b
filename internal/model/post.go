// internal/model/post.go
package model

const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// ScheduledPost is the subset of a blog post the publisher cares about.
// Timestamps are epoch milliseconds, matching the rest of the platform.
type ScheduledPost struct {
	ID            string `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	Status        string `db:"status" json:"status"`
	ScheduledDate int64  `db:"scheduled_date" json:"scheduled_date"`
	PublishedDate *int64 `db:"published_date" json:"published_date,omitempty"`
}
