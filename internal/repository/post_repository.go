package repository

import (
	"database/sql"

	"github.com/fooodis/fooodis-backend/internal/model"
)

type PostRepositoryInterface interface {
	DueScheduled(now int64, limit int) ([]model.ScheduledPost, error)
	MarkPublished(id string, now int64) error
}

type PostRepository struct {
	DB *sql.DB
}

// DueScheduled returns posts whose scheduled time has passed, earliest first.
func (r *PostRepository) DueScheduled(now int64, limit int) ([]model.ScheduledPost, error) {
	query := `
        SELECT id, title, scheduled_date
        FROM blog_posts
        WHERE status = 'scheduled'
          AND scheduled_date IS NOT NULL
          AND scheduled_date <= $1
        ORDER BY scheduled_date ASC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.ScheduledPost{}
	for rows.Next() {
		p := model.ScheduledPost{Status: model.PostStatusScheduled}
		if err := rows.Scan(&p.ID, &p.Title, &p.ScheduledDate); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// MarkPublished flips a post to published. Re-flipping an already-published
// post changes nothing observable, so overlapping invocations are safe.
func (r *PostRepository) MarkPublished(id string, now int64) error {
	query := `
        UPDATE blog_posts
        SET status = 'published', published_date = $1, updated_at = $1
        WHERE id = $2
    `
	_, err := r.DB.Exec(query, now, id)
	return err
}

var _ PostRepositoryInterface = (*PostRepository)(nil)
