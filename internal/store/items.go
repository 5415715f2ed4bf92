package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/habitcards/assistant/internal/models"
)

// Typed fetchers, one per collection. Each returns durable entities in
// insertion order.

func (g *Gateway) Alarms(ctx context.Context) ([]*models.Alarm, error) {
	return fetchTyped[models.Alarm](ctx, g, models.CollectionAlarms)
}

func (g *Gateway) Meetings(ctx context.Context) ([]*models.Meeting, error) {
	return fetchTyped[models.Meeting](ctx, g, models.CollectionMeetings)
}

func (g *Gateway) Moods(ctx context.Context) ([]*models.MoodEntry, error) {
	return fetchTyped[models.MoodEntry](ctx, g, models.CollectionMoods)
}

func (g *Gateway) InboxItems(ctx context.Context) ([]*models.InboxItem, error) {
	return fetchTyped[models.InboxItem](ctx, g, models.CollectionInbox)
}

func (g *Gateway) ScheduleBlocks(ctx context.Context) ([]*models.ScheduleBlock, error) {
	return fetchTyped[models.ScheduleBlock](ctx, g, models.CollectionSchedule)
}

func fetchTyped[T any](ctx context.Context, g *Gateway, kind string) ([]*T, error) {
	docs, err := g.fetchRaw(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		item := new(T)
		if err := json.Unmarshal(doc, item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s item: %w", kind, err)
		}
		out = append(out, item)
	}
	return out, nil
}
