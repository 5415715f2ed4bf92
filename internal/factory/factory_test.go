package factory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/parse"
)

func TestBuildIsTotal(t *testing.T) {
	t.Parallel()

	// A nil result for every mode still yields complete entities.
	for _, mode := range models.Modes {
		items := Build(mode, nil)
		if mode == models.ModeSchedule {
			// No blocks means no entities; that is the one empty case.
			if len(items) != 0 {
				t.Errorf("Expected no schedule blocks from nil result, got %d", len(items))
			}
			continue
		}
		if len(items) != 1 {
			t.Errorf("Expected 1 item for %s, got %d", mode, len(items))
		}
	}
}

func TestBuildAlarmDefaults(t *testing.T) {
	t.Parallel()

	items := Build(models.ModeAlarm, parse.AlarmResult{})
	alarm := items[0].(*models.Alarm)

	if alarm.Label != DefaultAlarmLabel {
		t.Errorf("Expected default label %q, got %q", DefaultAlarmLabel, alarm.Label)
	}
	if alarm.Time != DefaultAlarmTime {
		t.Errorf("Expected default time %q, got %q", DefaultAlarmTime, alarm.Time)
	}
	if !alarm.Enabled {
		t.Error("Expected new alarm to be enabled")
	}
	if len(alarm.WeekHistory) != 7 {
		t.Errorf("Expected 7 week history slots, got %d", len(alarm.WeekHistory))
	}
	if len(alarm.MonthHistory) != 30 {
		t.Errorf("Expected 30 month history slots, got %d", len(alarm.MonthHistory))
	}
	if alarm.ItemID() == uuid.Nil {
		t.Error("Expected an assigned ID")
	}
}

func TestBuildAlarmKeepsParsedFields(t *testing.T) {
	t.Parallel()

	items := Build(models.ModeAlarm, parse.AlarmResult{
		Label: "Morning Run",
		Time:  "09:45",
		Icon:  "figure.run",
		Routine: []parse.StepSpec{
			{Title: "Stretch", Duration: "5 min", Icon: "figure.flexibility"},
			{Title: "", Duration: "", Icon: ""},
		},
	})
	alarm := items[0].(*models.Alarm)

	if alarm.Label != "Morning Run" || alarm.Time != "09:45" {
		t.Errorf("Expected parsed fields kept, got %q at %q", alarm.Label, alarm.Time)
	}
	if len(alarm.Routine) != 2 {
		t.Fatalf("Expected 2 routine steps, got %d", len(alarm.Routine))
	}
	if alarm.Routine[0].Title != "Stretch" {
		t.Errorf("Expected first step kept, got %q", alarm.Routine[0].Title)
	}
	if alarm.Routine[1].Title != DefaultStepTitle {
		t.Errorf("Expected empty step defaulted to %q, got %q", DefaultStepTitle, alarm.Routine[1].Title)
	}
	if alarm.Routine[0].Completed {
		t.Error("Expected steps to start incomplete")
	}
}

func TestBuildMoodLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level *float64
		want  float64
	}{
		{name: "absent level defaults", level: nil, want: DefaultMoodLevel},
		{name: "zero is a real level", level: ptr(0.0), want: 0.0},
		{name: "clamped above", level: ptr(1.7), want: 1.0},
		{name: "clamped below", level: ptr(-0.3), want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items := Build(models.ModeMood, parse.MoodResult{Mood: "Calm", Level: tt.level})
			mood := items[0].(*models.MoodEntry)
			if mood.Level != tt.want {
				t.Errorf("Expected level %v, got %v", tt.want, mood.Level)
			}
			if len(mood.History) != models.MoodHistorySlots {
				t.Fatalf("Expected %d history slots, got %d", models.MoodHistorySlots, len(mood.History))
			}
			if mood.History[len(mood.History)-1] != tt.want {
				t.Errorf("Expected today's level last in history, got %v", mood.History[len(mood.History)-1])
			}
		})
	}
}

func TestBuildInboxPriority(t *testing.T) {
	t.Parallel()

	items := Build(models.ModeInbox, parse.InboxResult{Priority: "Urgent"})
	inbox := items[0].(*models.InboxItem)
	if inbox.Priority != models.PriorityMedium {
		t.Errorf("Expected invalid priority defaulted to Medium, got %s", inbox.Priority)
	}

	items = Build(models.ModeInbox, parse.InboxResult{Priority: string(models.PriorityHigh)})
	inbox = items[0].(*models.InboxItem)
	if inbox.Priority != models.PriorityHigh {
		t.Errorf("Expected High kept, got %s", inbox.Priority)
	}
}

func TestBuildScheduleOneItemPerBlock(t *testing.T) {
	t.Parallel()

	items := Build(models.ModeSchedule, parse.ScheduleResult{
		Blocks: []parse.BlockSpec{
			{Title: "Gym"},
			{},
			{Title: "Lunch", ColorName: "green"},
		},
	})
	if len(items) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(items))
	}
	second := items[1].(*models.ScheduleBlock)
	if second.Title != DefaultBlockTitle {
		t.Errorf("Expected empty block defaulted to %q, got %q", DefaultBlockTitle, second.Title)
	}
	third := items[2].(*models.ScheduleBlock)
	if third.ColorName != "green" {
		t.Errorf("Expected color kept, got %q", third.ColorName)
	}
}

func TestBuildWrongVariantDegrades(t *testing.T) {
	t.Parallel()

	// A meeting result fed to the alarm mode produces an all-default alarm.
	items := Build(models.ModeAlarm, parse.MeetingResult{Title: "Standup"})
	alarm := items[0].(*models.Alarm)
	if alarm.Label != DefaultAlarmLabel {
		t.Errorf("Expected default alarm from mismatched variant, got %q", alarm.Label)
	}
}

func ptr(v float64) *float64 { return &v }
