package models

import "github.com/google/uuid"

// Meeting is a scheduled meeting with a preparation checklist.
type Meeting struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // display label, e.g. "Tomorrow"
	Time      string    `json:"time"` // display label, e.g. "10:00 AM"
	Icon      string    `json:"icon"`
	Checklist []Step    `json:"checklist"`
	Notes     string    `json:"notes"`
}

func (m *Meeting) ItemID() uuid.UUID  { return m.ID }
func (m *Meeting) Collection() string { return CollectionMeetings }
