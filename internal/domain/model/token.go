package model

import "time"

// RewardToken is a single-use credential redeemable by its owner.
type RewardToken struct {
	Code      string
	OwnerID   int64
	Used      bool
	CreatedAt time.Time
	UsedAt    *time.Time
}

// Expired reports whether the token is outside the validity window at now.
// A zero window never expires.
func (t RewardToken) Expired(window time.Duration, now time.Time) bool {
	if window <= 0 {
		return false
	}
	return now.After(t.CreatedAt.Add(window))
}

// IssuedToken is a freshly created token with its shareable link.
type IssuedToken struct {
	Token RewardToken
	Link  string
}
