package model

import "time"

// User is a platform identity with a wallet.
type User struct {
	ID           int64
	Balance      Amount
	LastIssuedAt *time.Time
	CreatedAt    time.Time
}

// CooldownRemaining returns how long a user still has to wait before the next
// issuance. It is zero when the window is disabled or has elapsed.
func CooldownRemaining(last *time.Time, now time.Time, window time.Duration) time.Duration {
	if window <= 0 || last == nil {
		return 0
	}
	remaining := window - now.Sub(*last)
	if remaining < 0 {
		return 0
	}
	return remaining
}
