// Package mirror is the fire-and-forget sync gateway. Committed entities are
// reduced to a minimal projection and enqueued for the mirror worker to push
// to the backend. Nothing here ever affects local state: failures are logged
// and swallowed, and the controller never waits on a mirror.
package mirror

import (
	"context"
	"encoding/json"

	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/queue"
	"go.uber.org/zap"
)

// Gateway enqueues mirror jobs for committed entities.
type Gateway struct {
	queue  queue.JobQueue
	logger *zap.Logger
}

// NewGateway creates a sync gateway over the given job queue. A nil queue
// disables mirroring entirely.
func NewGateway(q queue.JobQueue, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{queue: q, logger: logger}
}

// Mirror serializes a minimal projection of the entity and enqueues it for
// the backend. It never returns an error: mirroring is best-effort only.
func (g *Gateway) Mirror(ctx context.Context, item models.Item) {
	if g.queue == nil {
		return
	}

	payload, err := json.Marshal(projection(item))
	if err != nil {
		g.logger.Warn("mirror_marshal_failed",
			zap.String("collection", item.Collection()),
			zap.Error(err),
		)
		return
	}

	job := queue.NewJob(item.Collection(), payload)
	if err := g.queue.Enqueue(ctx, job); err != nil {
		g.logger.Warn("mirror_enqueue_failed",
			zap.String("collection", item.Collection()),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	g.logger.Debug("mirror_enqueued",
		zap.String("collection", item.Collection()),
		zap.String("job_id", job.ID.String()),
	)
}

// projection reduces an entity to the fields worth mirroring for
// cross-device display and analytics. Statistics and checklists stay local.
func projection(item models.Item) any {
	switch v := item.(type) {
	case *models.Alarm:
		return map[string]any{
			"id":      v.ID,
			"label":   v.Label,
			"time":    v.Time,
			"icon":    v.Icon,
			"enabled": v.Enabled,
		}
	case *models.Meeting:
		return map[string]any{
			"id":    v.ID,
			"title": v.Title,
			"date":  v.Date,
			"time":  v.Time,
			"icon":  v.Icon,
		}
	case *models.MoodEntry:
		return map[string]any{
			"id":        v.ID,
			"mood":      v.Mood,
			"level":     v.Level,
			"createdAt": v.CreatedAt,
		}
	case *models.InboxItem:
		return map[string]any{
			"id":       v.ID,
			"source":   v.Source,
			"priority": v.Priority,
		}
	case *models.ScheduleBlock:
		return map[string]any{
			"id":        v.ID,
			"title":     v.Title,
			"startTime": v.StartTime,
			"endTime":   v.EndTime,
			"colorName": v.ColorName,
		}
	default:
		return item
	}
}
