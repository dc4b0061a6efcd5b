package queue

import "sync"

// InMemoryQueue collects published messages without a broker. Used in tests
// and local runs where RabbitMQ is not bound.
type InMemoryQueue struct {
	mu       sync.Mutex
	messages []Message
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{}
}

func (q *InMemoryQueue) Publish(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return nil
}

// Messages returns a copy of everything published so far.
func (q *InMemoryQueue) Messages() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.messages))
	copy(out, q.messages)
	return out
}

var _ Queue = (*InMemoryQueue)(nil)
