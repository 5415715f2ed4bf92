package models

import "github.com/google/uuid"

// Step is the shared checklist sub-entity. A step is owned by exactly one
// parent entity and has no independent lifecycle. Completed is the only field
// the user may mutate after the parent is committed.
type Step struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Duration  string    `json:"duration"`
	Icon      string    `json:"icon"`
	Completed bool      `json:"completed"`
}

// NewStep creates a step with a freshly assigned id.
func NewStep(title, duration, icon string) Step {
	return Step{
		ID:       uuid.New(),
		Title:    title,
		Duration: duration,
		Icon:     icon,
	}
}
