// internal/model/subscriber.go
package model

const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

type Subscriber struct {
	ID     string `db:"id" json:"id"`
	Email  string `db:"email" json:"email"`
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

// Recipient is the frozen view of a subscriber captured at enqueue time.
// Later subscriber changes do not affect an in-flight job.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
