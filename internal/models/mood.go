package models

import (
	"time"

	"github.com/google/uuid"
)

// MoodHistorySlots is the size of the rolling mood-level history.
const MoodHistorySlots = 7

// MoodEntry is a single mood check-in. Icon and color band are derived from
// Mood/Level by pure functions and are deliberately not stored.
type MoodEntry struct {
	ID         uuid.UUID `json:"id"`
	Mood       string    `json:"mood"`
	Level      float64   `json:"level"` // 0.0-1.0
	Trigger    string    `json:"trigger"`
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"createdAt"`
	History    []float64 `json:"history"` // 7 slots, oldest first
}

func (m *MoodEntry) ItemID() uuid.UUID  { return m.ID }
func (m *MoodEntry) Collection() string { return CollectionMoods }

// Icon maps the mood level onto a face glyph.
func (m *MoodEntry) Icon() string {
	switch {
	case m.Level >= 0.8:
		return "face.smiling.inverse"
	case m.Level >= 0.6:
		return "face.smiling"
	case m.Level >= 0.4:
		return "face.dashed"
	case m.Level >= 0.2:
		return "cloud"
	default:
		return "cloud.rain"
	}
}

// ColorBand maps the mood level onto a named color band.
func (m *MoodEntry) ColorBand() string {
	switch {
	case m.Level >= 0.7:
		return "green"
	case m.Level >= 0.4:
		return "yellow"
	default:
		return "red"
	}
}
