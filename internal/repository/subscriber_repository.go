package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fooodis/fooodis-backend/internal/model"
)

// SubscriberRepositoryInterface defines the recipient-resolution methods the
// newsletter enqueuer needs.
type SubscriberRepositoryInterface interface {
	AllSubscribed() ([]model.Recipient, error)
	Active() ([]model.Recipient, error)
	ByIDs(ids []string) ([]model.Recipient, error)
}

type SubscriberRepository struct {
	DB *sql.DB
}

// AllSubscribed returns every subscriber that has not unsubscribed.
func (r *SubscriberRepository) AllSubscribed() ([]model.Recipient, error) {
	query := `SELECT id, email, name FROM email_subscribers WHERE status != 'unsubscribed'`
	return r.queryRecipients(query)
}

// Active returns subscribers with status=active.
func (r *SubscriberRepository) Active() ([]model.Recipient, error) {
	query := `SELECT id, email, name FROM email_subscribers WHERE status = 'active'`
	return r.queryRecipients(query)
}

// ByIDs returns exactly the requested subscribers.
func (r *SubscriberRepository) ByIDs(ids []string) ([]model.Recipient, error) {
	if len(ids) == 0 {
		return []model.Recipient{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(
		`SELECT id, email, name FROM email_subscribers WHERE id IN (%s)`,
		strings.Join(placeholders, ","),
	)
	return r.queryRecipients(query, args...)
}

func (r *SubscriberRepository) queryRecipients(query string, args ...interface{}) ([]model.Recipient, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		var name sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Email, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			rec.Name = name.String
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
