package model

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus describes escrow lifecycle of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalStatusPending: {WithdrawalStatusApproved, WithdrawalStatusRejected},
}

// CanTransition reports whether a request may move between statuses.
func (s WithdrawalStatus) CanTransition(to WithdrawalStatus) bool {
	return allowed(withdrawalTransitions[s], to)
}

// WithdrawalAction is an admin decision on a pending request.
type WithdrawalAction string

const (
	WithdrawalApprove WithdrawalAction = "approve"
	WithdrawalReject  WithdrawalAction = "reject"
)

// Target returns the status the action resolves to.
func (a WithdrawalAction) Target() (WithdrawalStatus, bool) {
	switch a {
	case WithdrawalApprove:
		return WithdrawalStatusApproved, true
	case WithdrawalReject:
		return WithdrawalStatusRejected, true
	default:
		return "", false
	}
}

// Withdrawal is an escrowed debit awaiting admin resolution.
type Withdrawal struct {
	ID         uuid.UUID
	UserID     int64
	Method     string
	Account    string
	Amount     Amount
	Status     WithdrawalStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
	ResolvedBy *int64
	Reason     string
}

// Resolution describes a pending to terminal transition.
type Resolution struct {
	ID      uuid.UUID
	Target  WithdrawalStatus
	ActorID *int64
	Reason  string
	At      time.Time
}

func allowed[S comparable](targets []S, to S) bool {
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}
