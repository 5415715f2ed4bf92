package models

import "time"

// UserProfile is the singleton per-installation profile. Its presence is the
// signal that onboarding has completed.
type UserProfile struct {
	Name        string    `json:"name"`
	AvatarIndex int       `json:"avatarIndex"`
	CreatedAt   time.Time `json:"createdAt"`
}
