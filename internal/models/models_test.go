package models

import "testing"

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes {
		got, err := ParseMode(string(mode))
		if err != nil {
			t.Errorf("Expected %q valid, got %v", mode, err)
		}
		if got != mode {
			t.Errorf("Expected %q round-trip, got %q", mode, got)
		}
	}

	if _, err := ParseMode("bogus"); err == nil {
		t.Error("Expected unknown mode rejected")
	}
	if _, err := ParseMode(""); err == nil {
		t.Error("Expected empty mode rejected")
	}
}

func TestModeCollections(t *testing.T) {
	t.Parallel()

	want := map[Mode]string{
		ModeAlarm:    CollectionAlarms,
		ModeMeeting:  CollectionMeetings,
		ModeMood:     CollectionMoods,
		ModeInbox:    CollectionInbox,
		ModeSchedule: CollectionSchedule,
	}
	for mode, collection := range want {
		if got := mode.Collection(); got != collection {
			t.Errorf("Expected %s -> %s, got %s", mode, collection, got)
		}
	}
}

func TestModeInfoFallsBack(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes {
		info := mode.Info()
		if info.Label == "" || info.Icon == "" || info.Captions.Voice == "" {
			t.Errorf("Expected complete display metadata for %s, got %+v", mode, info)
		}
	}

	if got := Mode("bogus").Info(); got.Label != ModeAlarm.Info().Label {
		t.Errorf("Expected unknown mode to fall back to alarm metadata, got %+v", got)
	}
}

func TestMoodDerivedFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level float64
		icon  string
		band  string
	}{
		{level: 0.9, icon: "face.smiling.inverse", band: "green"},
		{level: 0.7, icon: "face.smiling", band: "green"},
		{level: 0.5, icon: "face.dashed", band: "yellow"},
		{level: 0.3, icon: "cloud", band: "red"},
		{level: 0.1, icon: "cloud.rain", band: "red"},
	}

	for _, tt := range tests {
		m := &MoodEntry{Level: tt.level}
		if got := m.Icon(); got != tt.icon {
			t.Errorf("Level %v: expected icon %q, got %q", tt.level, tt.icon, got)
		}
		if got := m.ColorBand(); got != tt.band {
			t.Errorf("Level %v: expected band %q, got %q", tt.level, tt.band, got)
		}
	}
}

func TestInboxCompletedCount(t *testing.T) {
	t.Parallel()

	item := &InboxItem{
		ActionItems: []Step{
			{Title: "a", Completed: true},
			{Title: "b"},
			{Title: "c", Completed: true},
		},
	}
	if got := item.CompletedCount(); got != 2 {
		t.Errorf("Expected 2 completed, got %d", got)
	}
}

func TestPriorityValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !p.Valid() {
			t.Errorf("Expected %q valid", p)
		}
	}
	if Priority("urgent").Valid() {
		t.Error("Expected 'urgent' invalid")
	}
	if Priority("").Valid() {
		t.Error("Expected empty priority invalid")
	}
}
