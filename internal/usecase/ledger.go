package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
	"github.com/polkiloo/earnbot/internal/observability"
)

// LedgerUseCase performs direct wallet mutations and balance queries.
type LedgerUseCase struct {
	wallets repository.WalletRepository
	admins  *Admins
	logger  *slog.Logger
}

// NewLedgerUseCase constructs LedgerUseCase.
func NewLedgerUseCase(wallets repository.WalletRepository, admins *Admins, logger *slog.Logger) *LedgerUseCase {
	return &LedgerUseCase{wallets: wallets, admins: admins, logger: logger}
}

// Ensure registers the user on first interaction.
func (u *LedgerUseCase) Ensure(ctx context.Context, userID int64) (*model.User, error) {
	return u.wallets.Ensure(ctx, userID)
}

// Credit adds a positive amount to the user's balance and returns the new balance.
func (u *LedgerUseCase) Credit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	if !amount.Positive() {
		return 0, domainErrors.ErrInvalidAmount
	}
	balance, err := u.wallets.Credit(ctx, userID, amount, kind, ref)
	observability.IncrementLedgerOperation("credit", err)
	return balance, err
}

// Debit subtracts a positive amount, failing with ErrInsufficientFunds
// instead of letting the balance go negative.
func (u *LedgerUseCase) Debit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	if !amount.Positive() {
		return 0, domainErrors.ErrInvalidAmount
	}
	balance, err := u.wallets.Debit(ctx, userID, amount, kind, ref)
	observability.IncrementLedgerOperation("debit", err)
	return balance, err
}

// Adjust applies an administrator's manual correction to userID's wallet.
// A positive delta credits, a negative one debits; the journal entry is
// recorded as EntryManual with the admin id as reference.
func (u *LedgerUseCase) Adjust(ctx context.Context, adminID, userID int64, delta model.Amount) (model.Amount, error) {
	if err := u.admins.Require(adminID); err != nil {
		return 0, err
	}
	ref := "admin:" + strconv.FormatInt(adminID, 10)

	var (
		balance model.Amount
		err     error
	)
	switch {
	case delta.Positive():
		balance, err = u.Credit(ctx, userID, delta, model.EntryManual, ref)
	case delta < 0:
		balance, err = u.Debit(ctx, userID, -delta, model.EntryManual, ref)
	default:
		return 0, domainErrors.ErrInvalidAmount
	}
	if err != nil {
		return 0, err
	}
	u.logger.Info("manual balance adjustment",
		slog.Int64("admin_id", adminID),
		slog.Int64("user_id", userID),
		slog.String("delta", delta.String()),
		slog.String("balance", balance.String()),
	)
	return balance, nil
}

// Balance returns the current balance, zero for unknown users.
func (u *LedgerUseCase) Balance(ctx context.Context, userID int64) (model.Amount, error) {
	user, err := u.wallets.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.Balance, nil
}
