package bot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// WalletFacade covers user registration and balances.
type WalletFacade interface {
	Register(ctx context.Context, userID int64) (*model.User, error)
	Balance(ctx context.Context, userID int64) (model.Amount, error)
}

// RewardFacade covers reward tokens and gift codes.
type RewardFacade interface {
	IssueToken(ctx context.Context, userID int64) (*model.IssuedToken, error)
	CooldownRemaining(ctx context.Context, userID int64) (time.Duration, error)
	RedeemToken(ctx context.Context, userID int64, code string) (model.Amount, error)
	RedeemGiftCode(ctx context.Context, userID int64, code string) (*model.GiftCode, model.Amount, error)
}

// WithdrawalFacade covers the withdrawal workflow.
type WithdrawalFacade interface {
	RequestWithdrawal(ctx context.Context, userID int64, method, account string, amount model.Amount) (*model.Withdrawal, model.Amount, error)
	ResolveWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, action model.WithdrawalAction) (*model.Withdrawal, error)
	Withdrawals(ctx context.Context, userID int64) ([]model.Withdrawal, error)
}

// AdminFacade covers privileged operations.
type AdminFacade interface {
	IsAdmin(userID int64) bool
	SetFeature(ctx context.Context, adminID int64, key string, enabled bool) (*model.Setting, error)
	SetCooldown(ctx context.Context, adminID int64, d time.Duration) (*model.Setting, error)
	GenerateGiftCodes(ctx context.Context, adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error)
	AdjustBalance(ctx context.Context, adminID, userID int64, delta model.Amount) (model.Amount, error)
	PendingWithdrawals(ctx context.Context, adminID int64, limit int) ([]model.Withdrawal, error)
}

// Facade aggregates everything the bot handler needs.
type Facade interface {
	WalletFacade
	RewardFacade
	WithdrawalFacade
	AdminFacade
}
