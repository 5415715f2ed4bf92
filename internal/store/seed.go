package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habitcards/assistant/internal/models"
	"go.uber.org/zap"
)

// Seed inserts demo data on first launch. It is idempotent: seeding is
// guarded by a zero-count check on the alarms collection, so a second launch
// performs no work.
func (g *Gateway) Seed(ctx context.Context) error {
	count, err := g.Count(ctx, models.CollectionAlarms)
	if err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if count > 0 {
		g.logger.Debug("seed_skipped", zap.Int("alarms", count))
		return nil
	}

	for _, item := range demoItems(time.Now().UTC()) {
		if err := g.Insert(item); err != nil {
			g.DiscardStaged()
			return fmt.Errorf("seed insert: %w", err)
		}
	}
	if err := g.Commit(ctx); err != nil {
		g.DiscardStaged()
		return fmt.Errorf("seed commit: %w", err)
	}

	g.logger.Info("seed_completed")
	return nil
}

// demoItems is the sample data a fresh installation starts with.
func demoItems(now time.Time) []models.Item {
	return []models.Item{
		&models.Alarm{
			ID:               uuid.New(),
			Label:            "Weekday Wake-up",
			Time:             "06:30",
			Enabled:          true,
			Icon:             "sunrise.fill",
			Streak:           4,
			BestStreak:       11,
			WeekHistory:      []bool{true, true, false, true, true, true, true},
			MonthHistory:     demoMonthHistory(),
			AvgDeviationMin:  6.5,
			SnoozeRate:       0.2,
			TotalCompletions: 38,
			Routine: []models.Step{
				models.NewStep("Make bed", "2 min", "bed.double"),
				models.NewStep("Cold shower", "5 min", "drop.fill"),
				models.NewStep("Coffee", "10 min", "cup.and.saucer.fill"),
			},
		},
		&models.Meeting{
			ID:    uuid.New(),
			Title: "Weekly Planning",
			Date:  "Monday",
			Time:  "9:00 AM",
			Icon:  "calendar.badge.clock",
			Checklist: []models.Step{
				models.NewStep("Review last week", "10 min", "arrow.counterclockwise"),
				models.NewStep("Pick top three goals", "10 min", "target"),
			},
			Notes: "Keep it under thirty minutes.",
		},
		&models.MoodEntry{
			ID:         uuid.New(),
			Mood:       "Focused",
			Level:      0.8,
			Trigger:    "Good night's sleep",
			Suggestion: "Protect the morning for deep work",
			CreatedAt:  now,
			History:    []float64{0.5, 0.6, 0.4, 0.7, 0.6, 0.7, 0.8},
		},
		&models.InboxItem{
			ID:         uuid.New(),
			Source:     "Email",
			SourceIcon: "envelope.fill",
			Priority:   models.PriorityHigh,
			ActionItems: []models.Step{
				models.NewStep("Sign contract", "5 min", "signature"),
				models.NewStep("Forward to legal", "2 min", "arrowshape.turn.up.right"),
			},
		},
		&models.ScheduleBlock{
			ID:        uuid.New(),
			Title:     "Morning routine",
			StartTime: "6:30 AM",
			EndTime:   "7:30 AM",
			Duration:  "1h",
			Icon:      "sunrise.fill",
			ColorName: "orange",
		},
		&models.ScheduleBlock{
			ID:        uuid.New(),
			Title:     "Deep work",
			StartTime: "8:00 AM",
			EndTime:   "11:00 AM",
			Duration:  "3h",
			Icon:      "brain.head.profile",
			ColorName: "purple",
		},
	}
}

func demoMonthHistory() []float64 {
	history := make([]float64, 30)
	for i := range history {
		// Gentle upward trend for the demo chart.
		history[i] = 0.4 + float64(i)*0.015
	}
	return history
}
