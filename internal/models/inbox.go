package models

import "github.com/google/uuid"

// Priority is the triage level of an inbox item.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// InboxItem is a triaged item from an external source with extracted action
// items.
type InboxItem struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	SourceIcon  string    `json:"sourceIcon"`
	Priority    Priority  `json:"priority"`
	ActionItems []Step    `json:"actionItems"`
}

func (i *InboxItem) ItemID() uuid.UUID  { return i.ID }
func (i *InboxItem) Collection() string { return CollectionInbox }

// CompletedCount is derived, not stored.
func (i *InboxItem) CompletedCount() int {
	n := 0
	for _, s := range i.ActionItems {
		if s.Completed {
			n++
		}
	}
	return n
}
