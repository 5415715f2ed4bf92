// Package queue carries mirror jobs: serialized projections of committed
// entities waiting to be pushed to the backend. Two implementations exist,
// an in-process queue for the single-binary prototype and RabbitMQ for the
// split worker deployment.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRetries bounds delivery attempts before a job is dropped.
const DefaultMaxRetries = 3

// Job is one mirror push waiting in the queue.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// NewJob creates a mirror job for one collection document.
func NewJob(collection string, payload json.RawMessage) *Job {
	return &Job{
		ID:         uuid.New(),
		Collection: collection,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: DefaultMaxRetries,
	}
}

// CanRetry checks if the job can be retried.
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count.
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
