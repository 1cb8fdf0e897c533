package model

import "time"

type Chore struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Points         int       `json:"points"`
	RecurrenceRule string    `json:"recurrence_rule"`
	ProfileIDs     []int64   `json:"profile_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Assignment is the per-date completion record for one chore and one profile.
// No row for a (chore, profile, date) key means "not completed"; rows are
// materialized lazily by the first toggle.
type Assignment struct {
	ChoreID     int64      `json:"chore_id"`
	ProfileID   int64      `json:"profile_id"`
	Date        string     `json:"date"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ChoreInstance is a chore as it appears on a profile's daily list.
type ChoreInstance struct {
	ChoreID     int64      `json:"id"`
	Title       string     `json:"title"`
	Points      int        `json:"points"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ProfileDueSet is one profile's resolved task list for a single date.
type ProfileDueSet struct {
	Profile
	Chores []ChoreInstance `json:"chores"`
}
