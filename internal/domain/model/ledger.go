package model

import "time"

// EntryKind names the reason for a balance change.
type EntryKind string

const (
	EntryTokenReward      EntryKind = "token_reward"
	EntryGiftCode         EntryKind = "gift_code"
	EntryWithdrawalHold   EntryKind = "withdrawal_hold"
	EntryWithdrawalRefund EntryKind = "withdrawal_refund"
	EntryManual           EntryKind = "manual"
)

// LedgerEntry is an append-only journal line written with every balance change.
type LedgerEntry struct {
	ID        int64
	UserID    int64
	Delta     Amount
	Kind      EntryKind
	Ref       string
	CreatedAt time.Time
}
