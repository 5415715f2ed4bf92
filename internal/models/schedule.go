package models

import "github.com/google/uuid"

// ScheduleBlock is one block of a day plan. Multiple blocks form the plan;
// no ordering beyond list order is enforced.
type ScheduleBlock struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime string    `json:"startTime"` // display label, e.g. "9:00 AM"
	EndTime   string    `json:"endTime"`
	Duration  string    `json:"duration"` // display label, e.g. "1h"
	Icon      string    `json:"icon"`
	ColorName string    `json:"colorName"`
	Completed bool      `json:"completed"`
}

func (b *ScheduleBlock) ItemID() uuid.UUID  { return b.ID }
func (b *ScheduleBlock) Collection() string { return CollectionSchedule }
