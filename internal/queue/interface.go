package queue

import "context"

// Message is one delivered job awaiting acknowledgement.
type Message interface {
	Ack() error
	Nack(requeue bool) error
	Job() *Job
}

// JobQueue is the interface for mirror job queues.
type JobQueue interface {
	// Enqueue adds a job to the queue. It must not block the caller; a full
	// queue is an error the caller may swallow.
	Enqueue(ctx context.Context, job *Job) error

	// Consume returns a channel of messages from the queue. Messages are
	// delivered asynchronously as they arrive and the caller acknowledges
	// each one. Prefetch controls how many unacknowledged messages a
	// consumer can hold. The channel closes when ctx is cancelled or the
	// queue closes.
	Consume(ctx context.Context, prefetchCount int) (<-chan Message, <-chan error, error)

	// Close closes the queue.
	Close() error

	// HealthCheck verifies the queue is usable.
	HealthCheck(ctx context.Context) error
}
