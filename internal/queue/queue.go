package queue

import (
	"github.com/fooodis/fooodis-backend/internal/model"
)

const (
	// TypeSendNewsletter is the only message type the consumer handles today.
	// Anything else is acknowledged and ignored so new types can roll out
	// before consumers learn about them.
	TypeSendNewsletter = "send_newsletter"

	// QueueName is the durable queue carrying newsletter batches.
	QueueName = "newsletter_sends"
)

// Message is one newsletter batch on the wire.
type Message struct {
	Type       string            `json:"type"`
	JobID      string            `json:"jobId"`
	Subject    string            `json:"subject"`
	Content    string            `json:"content"`
	Recipients []model.Recipient `json:"recipients"`
	Timestamp  int64             `json:"timestamp"`
}

// Queue publishes newsletter batches for async consumption.
type Queue interface {
	Publish(msg Message) error
}
