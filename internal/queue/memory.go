package queue

import (
	"context"
	"fmt"
	"sync"
)

// DefaultMemoryCapacity is the in-memory queue's buffer size. A full buffer
// fails Enqueue instead of blocking; mirroring is best-effort.
const DefaultMemoryCapacity = 256

// MemoryQueue is an in-process JobQueue for the single-binary deployment.
type MemoryQueue struct {
	mu     sync.Mutex
	jobs   chan *Job
	closed bool
}

// NewMemoryQueue creates an in-memory queue with the default capacity.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{jobs: make(chan *Job, DefaultMemoryCapacity)}
}

// Enqueue adds a job without blocking. A closed or full queue is an error.
func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue closed")
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue full")
	}
}

// Consume delivers queued jobs until ctx is cancelled or the queue closes.
// The prefetch count is ignored; the channel itself applies backpressure.
func (q *MemoryQueue) Consume(ctx context.Context, prefetchCount int) (<-chan Message, <-chan error, error) {
	messages := make(chan Message)
	errs := make(chan error, 1)

	go func() {
		defer close(messages)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case messages <- &memoryMessage{queue: q, job: job}:
				}
			}
		}
	}()

	return messages, errs, nil
}

// Close closes the queue. Pending jobs are still delivered to consumers.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	return nil
}

// HealthCheck reports whether the queue accepts jobs.
func (q *MemoryQueue) HealthCheck(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue closed")
	}
	return nil
}

type memoryMessage struct {
	queue *MemoryQueue
	job   *Job
}

func (m *memoryMessage) Job() *Job { return m.job }

func (m *memoryMessage) Ack() error { return nil }

// Nack re-enqueues the job when requeue is requested; otherwise the job is
// dropped (there is no in-memory dead letter queue). Retry accounting is the
// consumer's responsibility.
func (m *memoryMessage) Nack(requeue bool) error {
	if !requeue {
		return nil
	}
	return m.queue.Enqueue(context.Background(), m.job)
}

var _ JobQueue = (*MemoryQueue)(nil)
