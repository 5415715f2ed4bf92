package models

import "github.com/google/uuid"

// Alarm is a recurring wake-up routine. The statistics fields are opaque
// display data seeded at creation; the engine never recomputes them from
// usage because no event log is modeled.
type Alarm struct {
	ID               uuid.UUID `json:"id"`
	Label            string    `json:"label"`
	Time             string    `json:"time"` // "HH:mm"
	Enabled          bool      `json:"enabled"`
	Icon             string    `json:"icon"`
	Streak           int       `json:"streak"`
	BestStreak       int       `json:"bestStreak"`
	WeekHistory      []bool    `json:"weekHistory"`  // 7 slots, oldest first
	MonthHistory     []float64 `json:"monthHistory"` // 30 slots, 0.0-1.0
	AvgDeviationMin  float64   `json:"avgDeviationMin"`
	SnoozeRate       float64   `json:"snoozeRate"`
	TotalCompletions int       `json:"totalCompletions"`
	Routine          []Step    `json:"routine"`
}

func (a *Alarm) ItemID() uuid.UUID  { return a.ID }
func (a *Alarm) Collection() string { return CollectionAlarms }
