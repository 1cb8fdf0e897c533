package model

import "time"

// Penalty records a one-off deduction from a profile's balance. Points holds
// the magnitude; the debit happens when the penalty is issued and is credited
// back when it is revoked.
type Penalty struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Points      int       `json:"points"`
	ProfileID   int64     `json:"profile_id"`
	ProfileName string    `json:"profile_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
