// Package factory converts structured parse results into fully populated
// typed entities. Build is total: every field has a named default substituted
// when it is absent, malformed, or empty, so downstream preview rendering can
// assume a complete entity even from an entirely empty result.
package factory

import (
	"time"

	"github.com/google/uuid"
	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/parse"
)

// Named defaults, one per required field.
const (
	DefaultAlarmLabel    = "New Alarm"
	DefaultAlarmTime     = "07:00"
	DefaultAlarmIcon     = "alarm.fill"
	DefaultMeetingTitle  = "New Meeting"
	DefaultMeetingDate   = "Today"
	DefaultMeetingTime   = "9:00 AM"
	DefaultMeetingIcon   = "person.2.fill"
	DefaultMood          = "Okay"
	DefaultMoodLevel     = 0.5
	DefaultInboxSource   = "Inbox"
	DefaultInboxIcon     = "tray.fill"
	DefaultBlockTitle    = "Focus Block"
	DefaultBlockStart    = "9:00 AM"
	DefaultBlockEnd      = "10:00 AM"
	DefaultBlockDuration = "1h"
	DefaultBlockIcon     = "square.grid.2x2"
	DefaultBlockColor    = "blue"
	DefaultStepTitle     = "Step"
	DefaultStepDuration  = "5 min"
	DefaultStepIcon      = "circle"
)

// Build produces the pending entities for a capture cycle: one entity for
// most modes, one entity per block for schedule. A nil result, or a result of
// the wrong variant, degrades gracefully to an all-default entity.
func Build(mode models.Mode, res parse.Result) []models.Item {
	switch mode {
	case models.ModeMeeting:
		v, _ := res.(parse.MeetingResult)
		return []models.Item{buildMeeting(v)}
	case models.ModeMood:
		v, _ := res.(parse.MoodResult)
		return []models.Item{buildMood(v, time.Now())}
	case models.ModeInbox:
		v, _ := res.(parse.InboxResult)
		return []models.Item{buildInbox(v)}
	case models.ModeSchedule:
		v, _ := res.(parse.ScheduleResult)
		return buildSchedule(v)
	default:
		v, _ := res.(parse.AlarmResult)
		return []models.Item{buildAlarm(v)}
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func buildSteps(specs []parse.StepSpec) []models.Step {
	steps := make([]models.Step, 0, len(specs))
	for _, s := range specs {
		steps = append(steps, models.NewStep(
			orDefault(s.Title, DefaultStepTitle),
			orDefault(s.Duration, DefaultStepDuration),
			orDefault(s.Icon, DefaultStepIcon),
		))
	}
	return steps
}

func buildAlarm(v parse.AlarmResult) *models.Alarm {
	return &models.Alarm{
		ID:           uuid.New(),
		Label:        orDefault(v.Label, DefaultAlarmLabel),
		Time:         orDefault(v.Time, DefaultAlarmTime),
		Enabled:      true,
		Icon:         orDefault(v.Icon, DefaultAlarmIcon),
		WeekHistory:  make([]bool, 7),
		MonthHistory: make([]float64, 30),
		Routine:      buildSteps(v.Routine),
	}
}

func buildMeeting(v parse.MeetingResult) *models.Meeting {
	return &models.Meeting{
		ID:        uuid.New(),
		Title:     orDefault(v.Title, DefaultMeetingTitle),
		Date:      orDefault(v.Date, DefaultMeetingDate),
		Time:      orDefault(v.Time, DefaultMeetingTime),
		Icon:      orDefault(v.Icon, DefaultMeetingIcon),
		Checklist: buildSteps(v.Checklist),
		Notes:     v.Notes,
	}
}

func buildMood(v parse.MoodResult, now time.Time) *models.MoodEntry {
	level := DefaultMoodLevel
	if v.Level != nil {
		level = clamp01(*v.Level)
	}

	// Seed the rolling history at the default band with today's level last.
	history := make([]float64, models.MoodHistorySlots)
	for i := range history {
		history[i] = DefaultMoodLevel
	}
	history[len(history)-1] = level

	return &models.MoodEntry{
		ID:         uuid.New(),
		Mood:       orDefault(v.Mood, DefaultMood),
		Level:      level,
		Trigger:    v.Trigger,
		Suggestion: v.Suggestion,
		CreatedAt:  now,
		History:    history,
	}
}

func buildInbox(v parse.InboxResult) *models.InboxItem {
	priority := models.Priority(v.Priority)
	if !priority.Valid() {
		priority = models.PriorityMedium
	}
	return &models.InboxItem{
		ID:          uuid.New(),
		Source:      orDefault(v.Source, DefaultInboxSource),
		SourceIcon:  orDefault(v.SourceIcon, DefaultInboxIcon),
		Priority:    priority,
		ActionItems: buildSteps(v.ActionItems),
	}
}

func buildSchedule(v parse.ScheduleResult) []models.Item {
	items := make([]models.Item, 0, len(v.Blocks))
	for _, b := range v.Blocks {
		items = append(items, &models.ScheduleBlock{
			ID:        uuid.New(),
			Title:     orDefault(b.Title, DefaultBlockTitle),
			StartTime: orDefault(b.StartTime, DefaultBlockStart),
			EndTime:   orDefault(b.EndTime, DefaultBlockEnd),
			Duration:  orDefault(b.Duration, DefaultBlockDuration),
			Icon:      orDefault(b.Icon, DefaultBlockIcon),
			ColorName: orDefault(b.ColorName, DefaultBlockColor),
		})
	}
	return items
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
