package model

import "time"

type Reward struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PointsCost int       `json:"points_cost"`
	CreatedAt  time.Time `json:"created_at"`
}

// RewardRedemption is one redemption of a reward by a profile. A profile may
// redeem the same reward any number of times; each redemption is its own row.
type RewardRedemption struct {
	ID          int64  `json:"id"`
	RewardID    int64  `json:"reward_id"`
	ProfileID   int64  `json:"profile_id"`
	ProfileName string `json:"profile_name,omitempty"`
	AssignedAt  string `json:"assigned_at"`
}
