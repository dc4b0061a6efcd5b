// internal/model/automation_path.go
package model

const (
	FrequencyHourly  = "hourly"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"

	PathStatusActive = "Active"
)

// PathSchedule describes when an automation path should fire.
// Time is "HH:MM" in UTC; DayOfWeek is 0-6 (Sunday=0), DayOfMonth 1-31.
type PathSchedule struct {
	Frequency  string `json:"frequency"`
	Time       string `json:"time,omitempty"`
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`
	DayOfMonth *int   `json:"dayOfMonth,omitempty"`
}

// AutomationPath is a recurring rule for AI content generation. The whole
// collection is stored as one JSON blob in the key-value store.
type AutomationPath struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Enabled     bool          `json:"enabled"`
	Status      string        `json:"status"`
	Category    string        `json:"category"`
	Subcategory string        `json:"subcategory"`
	Schedule    *PathSchedule `json:"schedule,omitempty"`
}
