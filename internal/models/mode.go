package models

import "fmt"

// Mode is one of the supported activity categories. It selects the parse
// schema, the entity type, and the display metadata for a capture cycle.
type Mode string

const (
	ModeAlarm    Mode = "alarm"
	ModeMeeting  Mode = "meeting"
	ModeMood     Mode = "mood"
	ModeInbox    Mode = "inbox"
	ModeSchedule Mode = "schedule"
)

// Modes lists all modes in display order.
var Modes = []Mode{ModeAlarm, ModeMeeting, ModeMood, ModeInbox, ModeSchedule}

// ParseMode converts a string into a Mode, rejecting unknown values.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode: %q", s)
	}
	return m, nil
}

// Valid reports whether m is a member of the closed mode set.
func (m Mode) Valid() bool {
	switch m {
	case ModeAlarm, ModeMeeting, ModeMood, ModeInbox, ModeSchedule:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// Collection returns the durable collection name for entities of this mode.
// These match the backend's /api/{collection} routes.
func (m Mode) Collection() string {
	switch m {
	case ModeAlarm:
		return CollectionAlarms
	case ModeMeeting:
		return CollectionMeetings
	case ModeMood:
		return CollectionMoods
	case ModeInbox:
		return CollectionInbox
	case ModeSchedule:
		return CollectionSchedule
	}
	return ""
}

// StageCaptions holds the lifecycle-stage copy shown by the presentation layer.
type StageCaptions struct {
	Voice    string `json:"voice"`
	Preview  string `json:"preview"`
	Creating string `json:"creating"`
	Saved    string `json:"saved"`
}

// ModeInfo is the display metadata attached to a mode. The engine never
// interprets it; renderers do.
type ModeInfo struct {
	Label       string        `json:"label"`
	Icon        string        `json:"icon"`
	Color       string        `json:"color"`
	Placeholder string        `json:"placeholder"`
	Captions    StageCaptions `json:"captions"`
}

var modeInfos = map[Mode]ModeInfo{
	ModeAlarm: {
		Label:       "Alarm",
		Icon:        "alarm.fill",
		Color:       "orange",
		Placeholder: "Set alarm 9:45 AM morning run...",
		Captions: StageCaptions{
			Voice:    "Tell me about your alarm",
			Preview:  "Here's your alarm",
			Creating: "Setting your alarm",
			Saved:    "Alarm set",
		},
	},
	ModeMeeting: {
		Label:       "Meeting",
		Icon:        "person.2.fill",
		Color:       "blue",
		Placeholder: "Standup tomorrow at 10 with the team...",
		Captions: StageCaptions{
			Voice:    "Tell me about your meeting",
			Preview:  "Here's your meeting",
			Creating: "Scheduling your meeting",
			Saved:    "Meeting scheduled",
		},
	},
	ModeMood: {
		Label:       "Mood",
		Icon:        "face.smiling.fill",
		Color:       "purple",
		Placeholder: "Feeling great after the workout...",
		Captions: StageCaptions{
			Voice:    "How are you feeling?",
			Preview:  "Here's your check-in",
			Creating: "Logging your mood",
			Saved:    "Mood logged",
		},
	},
	ModeInbox: {
		Label:       "Inbox",
		Icon:        "tray.fill",
		Color:       "teal",
		Placeholder: "Email from Sarah about the contract...",
		Captions: StageCaptions{
			Voice:    "What landed in your inbox?",
			Preview:  "Here's your inbox item",
			Creating: "Filing your item",
			Saved:    "Item filed",
		},
	},
	ModeSchedule: {
		Label:       "Schedule",
		Icon:        "calendar",
		Color:       "green",
		Placeholder: "Plan my morning: gym then deep work...",
		Captions: StageCaptions{
			Voice:    "Walk me through your day",
			Preview:  "Here's your plan",
			Creating: "Building your schedule",
			Saved:    "Schedule ready",
		},
	},
}

// Info returns the display metadata for the mode. Unknown modes fall back to
// alarm so renderers always have something to draw.
func (m Mode) Info() ModeInfo {
	if info, ok := modeInfos[m]; ok {
		return info
	}
	return modeInfos[ModeAlarm]
}
