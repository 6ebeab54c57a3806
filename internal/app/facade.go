package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EarnFacade is the single entry point the bot, HTTP API and expiry worker
// use to reach the use cases.
type EarnFacade struct {
	settings    *usecase.SettingsUseCase
	ledger      *usecase.LedgerUseCase
	tokens      *usecase.TokenUseCase
	giftCodes   *usecase.GiftCodeUseCase
	withdrawals *usecase.WithdrawalUseCase
	admins      *usecase.Admins
	health      HealthChecker
}

// NewEarnFacade constructs EarnFacade. A nil health checker reports healthy.
func NewEarnFacade(
	settings *usecase.SettingsUseCase,
	ledger *usecase.LedgerUseCase,
	tokens *usecase.TokenUseCase,
	giftCodes *usecase.GiftCodeUseCase,
	withdrawals *usecase.WithdrawalUseCase,
	admins *usecase.Admins,
	health HealthChecker,
) *EarnFacade {
	return &EarnFacade{
		settings:    settings,
		ledger:      ledger,
		tokens:      tokens,
		giftCodes:   giftCodes,
		withdrawals: withdrawals,
		admins:      admins,
		health:      health,
	}
}

func (f *EarnFacade) Register(ctx context.Context, userID int64) (*model.User, error) {
	return f.ledger.Ensure(ctx, userID)
}

func (f *EarnFacade) Balance(ctx context.Context, userID int64) (model.Amount, error) {
	return f.ledger.Balance(ctx, userID)
}

func (f *EarnFacade) IssueToken(ctx context.Context, userID int64) (*model.IssuedToken, error) {
	return f.tokens.Issue(ctx, userID)
}

func (f *EarnFacade) CooldownRemaining(ctx context.Context, userID int64) (time.Duration, error) {
	return f.tokens.Cooldown(ctx, userID)
}

func (f *EarnFacade) RedeemToken(ctx context.Context, userID int64, code string) (model.Amount, error) {
	_, balance, err := f.tokens.Redeem(ctx, code, userID)
	return balance, err
}

func (f *EarnFacade) RedeemGiftCode(ctx context.Context, userID int64, code string) (*model.GiftCode, model.Amount, error) {
	return f.giftCodes.Redeem(ctx, code, userID)
}

func (f *EarnFacade) RequestWithdrawal(ctx context.Context, userID int64, method, account string, amount model.Amount) (*model.Withdrawal, model.Amount, error) {
	return f.withdrawals.Request(ctx, userID, method, account, amount)
}

func (f *EarnFacade) ResolveWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, action model.WithdrawalAction) (*model.Withdrawal, error) {
	return f.withdrawals.Resolve(ctx, id, action, adminID)
}

func (f *EarnFacade) Withdrawals(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	return f.withdrawals.History(ctx, userID, 0)
}

func (f *EarnFacade) IsAdmin(userID int64) bool {
	return f.admins.IsAdmin(userID)
}

func (f *EarnFacade) SetFeature(ctx context.Context, adminID int64, key string, enabled bool) (*model.Setting, error) {
	return f.settings.SetEnabled(ctx, adminID, key, enabled)
}

func (f *EarnFacade) SetCooldown(ctx context.Context, adminID int64, d time.Duration) (*model.Setting, error) {
	return f.settings.SetCooldown(ctx, adminID, d)
}

func (f *EarnFacade) UpdateSetting(ctx context.Context, adminID int64, key string, enabled *bool, cooldown time.Duration) (*model.Setting, error) {
	return f.settings.Update(ctx, adminID, key, enabled, cooldown)
}

func (f *EarnFacade) GenerateGiftCodes(ctx context.Context, adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error) {
	return f.giftCodes.GenerateBatch(ctx, adminID, amount, quantity)
}

func (f *EarnFacade) AdjustBalance(ctx context.Context, adminID, userID int64, delta model.Amount) (model.Amount, error) {
	return f.ledger.Adjust(ctx, adminID, userID, delta)
}

func (f *EarnFacade) PendingWithdrawals(ctx context.Context, adminID int64, limit int) ([]model.Withdrawal, error) {
	return f.withdrawals.Pending(ctx, adminID, limit)
}

func (f *EarnFacade) StaleWithdrawals(ctx context.Context, limit int) ([]model.Withdrawal, error) {
	return f.withdrawals.Stale(ctx, limit)
}

func (f *EarnFacade) ExpireWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	return f.withdrawals.Expire(ctx, id)
}

func (f *EarnFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
