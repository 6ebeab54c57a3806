package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// WithdrawalFacade exposes withdrawal moderation over HTTP.
type WithdrawalFacade interface {
	PendingWithdrawals(ctx context.Context, adminID int64, limit int) ([]model.Withdrawal, error)
	ResolveWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, action model.WithdrawalAction) (*model.Withdrawal, error)
}

// AdminFacade provides the remaining privileged operations.
type AdminFacade interface {
	IsAdmin(userID int64) bool
	Balance(ctx context.Context, userID int64) (model.Amount, error)
	AdjustBalance(ctx context.Context, adminID, userID int64, delta model.Amount) (model.Amount, error)
	GenerateGiftCodes(ctx context.Context, adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error)
	UpdateSetting(ctx context.Context, adminID int64, key string, enabled *bool, cooldown time.Duration) (*model.Setting, error)
}

// ServiceFacade aggregates the operations used across handlers.
type ServiceFacade interface {
	HealthFacade
	WithdrawalFacade
	AdminFacade
}
