package parse

import (
	"context"

	"github.com/habitcards/assistant/internal/models"
)

// TierLocal names the deterministic fallback tier.
const TierLocal = "local"

// LocalTier returns a fixed, mode-specific illustrative result. It is the
// terminal tier: it never fails, which makes the pipeline as a whole
// error-free from the caller's perspective.
type LocalTier struct{}

// NewLocalTier creates the deterministic fallback tier.
func NewLocalTier() *LocalTier { return &LocalTier{} }

func (t *LocalTier) Name() string { return TierLocal }

func (t *LocalTier) Parse(ctx context.Context, mode models.Mode, text string) (Result, error) {
	return Fixture(mode), nil
}

// Fixture returns the canned structured result for a mode. Exported so the
// resolver can guarantee a usable result even when misconfigured without a
// local tier.
func Fixture(mode models.Mode) Result {
	switch mode {
	case models.ModeMeeting:
		return MeetingResult{
			Title: "Design Sync",
			Date:  "Tomorrow",
			Time:  "10:00 AM",
			Icon:  "person.2.fill",
			Checklist: []StepSpec{
				{Title: "Review mockups", Duration: "10 min", Icon: "doc.richtext"},
				{Title: "Prepare questions", Duration: "5 min", Icon: "questionmark.circle"},
			},
			Notes: "Walk through the latest iteration with the team.",
		}
	case models.ModeMood:
		level := 0.7
		return MoodResult{
			Mood:       "Calm",
			Level:      &level,
			Trigger:    "Morning walk",
			Suggestion: "Keep a steady pace through the afternoon",
		}
	case models.ModeInbox:
		return InboxResult{
			Source:     "Email",
			SourceIcon: "envelope.fill",
			Priority:   string(models.PriorityMedium),
			ActionItems: []StepSpec{
				{Title: "Reply to thread", Duration: "10 min", Icon: "arrowshape.turn.up.left"},
				{Title: "File attachment", Duration: "2 min", Icon: "folder"},
			},
		}
	case models.ModeSchedule:
		return ScheduleResult{
			Blocks: []BlockSpec{
				{Title: "Gym", StartTime: "7:00 AM", EndTime: "8:00 AM", Duration: "1h", Icon: "dumbbell", ColorName: "orange"},
				{Title: "Deep work", StartTime: "9:00 AM", EndTime: "11:00 AM", Duration: "2h", Icon: "brain.head.profile", ColorName: "purple"},
				{Title: "Lunch walk", StartTime: "12:00 PM", EndTime: "12:30 PM", Duration: "30m", Icon: "figure.walk", ColorName: "green"},
			},
		}
	default:
		return AlarmResult{
			Label: "Morning Run",
			Time:  "09:45",
			Icon:  "figure.run",
			Routine: []StepSpec{
				{Title: "Stretch", Duration: "5 min", Icon: "figure.flexibility"},
				{Title: "Hydrate", Duration: "2 min", Icon: "drop.fill"},
				{Title: "Run", Duration: "30 min", Icon: "figure.run"},
			},
		}
	}
}
