// Package workers contains the queue consumers. The mirrorer drains the
// mirror job queue and pushes entity projections to the backend collections.
package workers

import (
	"context"
	"fmt"

	"github.com/habitcards/assistant/internal/backend"
	"github.com/habitcards/assistant/internal/queue"
	"go.uber.org/zap"
)

// Mirrorer processes mirror push jobs.
type Mirrorer struct {
	jobQueue queue.JobQueue
	client   *backend.Client
	logger   *zap.Logger
}

// NewMirrorer creates a mirror worker.
func NewMirrorer(jobQueue queue.JobQueue, client *backend.Client, logger *zap.Logger) *Mirrorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirrorer{jobQueue: jobQueue, client: client, logger: logger}
}

// Run consumes mirror jobs until ctx is cancelled or the queue closes.
func (m *Mirrorer) Run(ctx context.Context, prefetchCount int) error {
	messages, errs, err := m.jobQueue.Consume(ctx, prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	m.logger.Info("mirror_worker_started", zap.Int("prefetch", prefetchCount))

	for {
		select {
		case <-ctx.Done():
			return nil
		case consumeErr := <-errs:
			return fmt.Errorf("consumer error: %w", consumeErr)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			m.process(ctx, msg)
		}
	}
}

// process pushes one job to the backend. Failed jobs are re-enqueued with an
// incremented retry count until MaxRetries, then dropped to the DLQ.
func (m *Mirrorer) process(ctx context.Context, msg queue.Message) {
	job := msg.Job()

	if err := m.client.Push(ctx, job.Collection, job.Payload); err != nil {
		if job.CanRetry() {
			job.IncrementRetry()
			m.logger.Warn("mirror_push_failed_will_retry",
				zap.String("job_id", job.ID.String()),
				zap.String("collection", job.Collection),
				zap.Int("attempt", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Error(err),
			)
			if enqueueErr := m.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
				m.logger.Error("mirror_reenqueue_failed",
					zap.String("job_id", job.ID.String()),
					zap.Error(enqueueErr),
				)
				if nackErr := msg.Nack(true); nackErr != nil {
					m.logger.Warn("mirror_nack_failed", zap.Error(nackErr))
				}
				return
			}
			if ackErr := msg.Ack(); ackErr != nil {
				m.logger.Warn("mirror_ack_failed", zap.Error(ackErr))
			}
			return
		}

		m.logger.Error("mirror_push_failed_max_retries",
			zap.String("job_id", job.ID.String()),
			zap.String("collection", job.Collection),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			m.logger.Warn("mirror_nack_failed", zap.Error(nackErr))
		}
		return
	}

	m.logger.Info("mirror_pushed",
		zap.String("job_id", job.ID.String()),
		zap.String("collection", job.Collection),
	)
	if ackErr := msg.Ack(); ackErr != nil {
		m.logger.Warn("mirror_ack_failed", zap.Error(ackErr))
	}
}
