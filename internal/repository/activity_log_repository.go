package repository

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityLogInterface records one summarizing entry per worker batch.
type ActivityLogInterface interface {
	Log(action string, details interface{}) error
}

type ActivityLogRepository struct {
	DB *sql.DB
}

const schedulerUserID = "automation-scheduler"

func (r *ActivityLogRepository) Log(action string, details interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}

	id := "act_" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	query := `
        INSERT INTO activity_log (id, user_id, action, details, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = r.DB.Exec(query, id, schedulerUserID, action, string(payload), time.Now().UnixMilli())
	return err
}

var _ ActivityLogInterface = (*ActivityLogRepository)(nil)
