package model

import "time"

// GiftCode is an admin-issued single-use credit.
type GiftCode struct {
	Code      string
	Amount    Amount
	Used      bool
	UsedBy    *int64
	CreatedBy int64
	CreatedAt time.Time
	UsedAt    *time.Time
}
