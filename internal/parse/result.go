// Package parse turns raw transcript text into a mode-specific structured
// result using a tiered strategy: backend parser, then a generative model,
// then a deterministic local fixture. Tiers run strictly in order; the first
// success wins and the local tier cannot fail, so resolution always
// terminates with a usable result.
package parse

import (
	"encoding/json"
	"fmt"

	"github.com/habitcards/assistant/internal/models"
)

// Result is the tagged union of structured parse results, one variant per
// mode. Variants are sparse: any field may be empty and the item factory
// substitutes defaults downstream.
type Result interface {
	ResultMode() models.Mode
}

// StepSpec is the wire shape of a routine/checklist/action-item entry.
type StepSpec struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Icon     string `json:"icon"`
}

// AlarmResult is the alarm-mode schema.
type AlarmResult struct {
	Label   string     `json:"label"`
	Time    string     `json:"time"`
	Icon    string     `json:"icon"`
	Routine []StepSpec `json:"routine"`
}

func (AlarmResult) ResultMode() models.Mode { return models.ModeAlarm }

// MeetingResult is the meeting-mode schema.
type MeetingResult struct {
	Title     string     `json:"title"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Icon      string     `json:"icon"`
	Checklist []StepSpec `json:"checklist"`
	Notes     string     `json:"notes"`
}

func (MeetingResult) ResultMode() models.Mode { return models.ModeMeeting }

// MoodResult is the mood-mode schema. Level is a pointer so an absent level
// is distinguishable from a literal 0.0 and can be defaulted downstream.
type MoodResult struct {
	Mood       string   `json:"mood"`
	Level      *float64 `json:"level"`
	Trigger    string   `json:"trigger"`
	Suggestion string   `json:"suggestion"`
}

func (MoodResult) ResultMode() models.Mode { return models.ModeMood }

// InboxResult is the inbox-mode schema.
type InboxResult struct {
	Source      string     `json:"source"`
	SourceIcon  string     `json:"sourceIcon"`
	Priority    string     `json:"priority"`
	ActionItems []StepSpec `json:"actionItems"`
}

func (InboxResult) ResultMode() models.Mode { return models.ModeInbox }

// BlockSpec is the wire shape of one schedule block.
type BlockSpec struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Icon      string `json:"icon"`
	ColorName string `json:"colorName"`
}

// ScheduleResult is the schedule-mode schema.
type ScheduleResult struct {
	Blocks []BlockSpec `json:"blocks"`
}

func (ScheduleResult) ResultMode() models.Mode { return models.ModeSchedule }

// errorEnvelope detects responses that self-report failure.
type errorEnvelope struct {
	Error string `json:"error"`
}

// Decode parses a raw tier response into the mode's result variant. Only
// malformed JSON and a self-reported error field are errors; missing or
// out-of-range individual fields are not, so a usable tier response is never
// discarded over one bad field (the factory clamps and defaults them later).
func Decode(mode models.Mode, data []byte) (Result, error) {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error != "" {
		return nil, fmt.Errorf("tier reported error: %s", env.Error)
	}

	var (
		res Result
		err error
	)
	switch mode {
	case models.ModeAlarm:
		var v AlarmResult
		err = json.Unmarshal(data, &v)
		res = v
	case models.ModeMeeting:
		var v MeetingResult
		err = json.Unmarshal(data, &v)
		res = v
	case models.ModeMood:
		var v MoodResult
		err = json.Unmarshal(data, &v)
		res = v
	case models.ModeInbox:
		var v InboxResult
		err = json.Unmarshal(data, &v)
		res = v
	case models.ModeSchedule:
		var v ScheduleResult
		err = json.Unmarshal(data, &v)
		res = v
	default:
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", mode, err)
	}

	return res, nil
}
