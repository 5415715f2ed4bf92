// Package models defines the typed entities the assistant engine manipulates:
// one entity type per mode, their shared Step sub-entity, and the user profile
// that gates onboarding. Entities are pure data; invariants live in comments
// and in the components that construct them.
package models

import "github.com/google/uuid"

// Durable collection names, one per entity type. They double as the backend's
// /api/{collection} route segments.
const (
	CollectionAlarms   = "alarms"
	CollectionMeetings = "meetings"
	CollectionMoods    = "moods"
	CollectionInbox    = "inbox"
	CollectionSchedule = "schedule"
	CollectionProfiles = "profiles"
)

// Item is implemented by every persistable entity. IDs are assigned once at
// construction, client-side, and never reassigned.
type Item interface {
	ItemID() uuid.UUID
	Collection() string
}

// Compile-time checks that every entity satisfies Item.
var (
	_ Item = (*Alarm)(nil)
	_ Item = (*Meeting)(nil)
	_ Item = (*MoodEntry)(nil)
	_ Item = (*InboxItem)(nil)
	_ Item = (*ScheduleBlock)(nil)
)
