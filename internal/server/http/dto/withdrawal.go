package dto

import "time"

// WithdrawalResponse describes a withdrawal request.
type WithdrawalResponse struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Method     string     `json:"method"`
	Account    string     `json:"account"`
	Amount     string     `json:"amount"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	ResolvedBy *int64     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
