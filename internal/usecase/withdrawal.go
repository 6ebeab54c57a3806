package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
	"github.com/polkiloo/earnbot/internal/observability"
)

// Reasons recorded on system resolutions.
const (
	ReasonNotificationFailed = "notification_failed"
	ReasonExpired            = "expired"
)

const defaultListLimit = 20

// WithdrawalNotifier tells admins and users about withdrawal requests.
type WithdrawalNotifier interface {
	WithdrawalRequested(ctx context.Context, w model.Withdrawal) error
	WithdrawalResolved(ctx context.Context, w model.Withdrawal) error
}

// WithdrawalUseCase runs the escrow workflow for withdrawal requests.
type WithdrawalUseCase struct {
	withdrawals repository.WithdrawalRepository
	settings    *SettingsUseCase
	admins      *Admins
	notifier    WithdrawalNotifier
	policy      Policy
	now         Clock
	logger      *slog.Logger
}

// NewWithdrawalUseCase constructs WithdrawalUseCase.
func NewWithdrawalUseCase(
	withdrawals repository.WithdrawalRepository,
	settings *SettingsUseCase,
	admins *Admins,
	notifier WithdrawalNotifier,
	policy Policy,
	now Clock,
	logger *slog.Logger,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		withdrawals: withdrawals,
		settings:    settings,
		admins:      admins,
		notifier:    notifier,
		policy:      policy,
		now:         now,
		logger:      logger,
	}
}

// Request holds amount from the user's balance and asks admins to pay it out.
// When admins cannot be notified the hold is released and an
// ExternalServiceError is returned.
func (u *WithdrawalUseCase) Request(ctx context.Context, userID int64, method, account string, amount model.Amount) (*model.Withdrawal, model.Amount, error) {
	enabled, err := u.settings.Enabled(ctx, model.SettingWithdraw)
	if err != nil {
		return nil, 0, err
	}
	if !enabled {
		return nil, 0, domainErrors.ErrFeatureDisabled
	}

	method, account, err = ValidateDestination(method, account)
	if err != nil {
		return nil, 0, err
	}
	if !amount.Positive() {
		return nil, 0, domainErrors.ErrInvalidAmount
	}
	if amount < u.policy.MinWithdraw {
		return nil, 0, domainErrors.ErrBelowMinimum
	}

	w := model.Withdrawal{
		ID:        uuid.New(),
		UserID:    userID,
		Method:    method,
		Account:   account,
		Amount:    amount,
		Status:    model.WithdrawalStatusPending,
		CreatedAt: u.now(),
	}

	balance, err := u.withdrawals.Create(ctx, w)
	observability.IncrementLedgerOperation("withdrawal_hold", err)
	if err != nil {
		return nil, 0, err
	}
	observability.IncrementWithdrawalTransition(string(model.WithdrawalStatusPending))

	if err := u.notifier.WithdrawalRequested(ctx, w); err != nil {
		u.logger.Warn("admin notification failed, releasing hold",
			slog.String("request_id", w.ID.String()),
			slog.String("error", err.Error()),
		)
		notifyErr := domainErrors.NewExternal("admin_notifier", domainErrors.ErrNotificationFailed, err)
		if _, rerr := u.systemReject(context.WithoutCancel(ctx), w.ID, ReasonNotificationFailed); rerr != nil {
			if errors.Is(rerr, domainErrors.ErrAlreadyResolved) {
				return u.settledDespiteNotifyFailure(context.WithoutCancel(ctx), w, balance, notifyErr)
			}
			u.logger.Error("failed to release withdrawal hold",
				slog.String("request_id", w.ID.String()),
				slog.String("error", rerr.Error()),
			)
			return nil, 0, errors.Join(notifyErr, rerr)
		}
		return nil, 0, notifyErr
	}

	u.logger.Info("withdrawal requested",
		slog.String("request_id", w.ID.String()),
		slog.Int64("user_id", userID),
		slog.String("amount", amount.String()),
	)
	return &w, balance, nil
}

// settledDespiteNotifyFailure reports the real outcome of a request that an
// admin resolved even though delivering the request message returned an error.
// An approved request keeps its hold and is reported as accepted.
func (u *WithdrawalUseCase) settledDespiteNotifyFailure(ctx context.Context, w model.Withdrawal, balance model.Amount, notifyErr error) (*model.Withdrawal, model.Amount, error) {
	current, err := u.withdrawals.Get(ctx, w.ID)
	if err != nil {
		return nil, 0, errors.Join(notifyErr, err)
	}
	if current.Status != model.WithdrawalStatusApproved {
		return nil, 0, notifyErr
	}
	u.logger.Warn("admin notification reported an error but the request was approved",
		slog.String("request_id", w.ID.String()),
		slog.String("error", notifyErr.Error()),
	)
	return current, balance, nil
}

// Resolve approves or rejects a pending request. Rejection refunds the hold.
func (u *WithdrawalUseCase) Resolve(ctx context.Context, id uuid.UUID, action model.WithdrawalAction, adminID int64) (*model.Withdrawal, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	target, ok := action.Target()
	if !ok {
		return nil, domainErrors.ErrInvalidArgument
	}

	actor := adminID
	w, err := u.resolve(ctx, model.Resolution{ID: id, Target: target, ActorID: &actor, At: u.now()})
	if err != nil {
		return nil, err
	}

	u.logger.Info("withdrawal resolved",
		slog.String("request_id", id.String()),
		slog.String("status", string(w.Status)),
		slog.Int64("admin_id", adminID),
	)
	u.notifyResolved(ctx, *w)
	return w, nil
}

// Get returns a single request.
func (u *WithdrawalUseCase) Get(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	return u.withdrawals.Get(ctx, id)
}

// History returns the user's requests, newest first.
func (u *WithdrawalUseCase) History(ctx context.Context, userID int64, limit int) ([]model.Withdrawal, error) {
	return u.withdrawals.ListByUser(ctx, userID, normalizeLimit(limit))
}

// Pending returns pending requests, oldest first, for an administrator.
func (u *WithdrawalUseCase) Pending(ctx context.Context, adminID int64, limit int) ([]model.Withdrawal, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	items, err := u.withdrawals.ListPending(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	observability.SetPendingWithdrawals(len(items))
	return items, nil
}

// Stale returns pending requests older than the configured pending TTL.
// It returns nothing when expiry is disabled.
func (u *WithdrawalUseCase) Stale(ctx context.Context, limit int) ([]model.Withdrawal, error) {
	if u.policy.PendingTTL <= 0 {
		return nil, nil
	}
	return u.withdrawals.ListStale(ctx, u.now().Add(-u.policy.PendingTTL), normalizeLimit(limit))
}

// Expire rejects a stale request on behalf of the system and refunds it.
// A request resolved in the meantime is left untouched.
func (u *WithdrawalUseCase) Expire(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	w, err := u.systemReject(ctx, id, ReasonExpired)
	if err != nil {
		return nil, err
	}
	u.notifyResolved(ctx, *w)
	return w, nil
}

func (u *WithdrawalUseCase) systemReject(ctx context.Context, id uuid.UUID, reason string) (*model.Withdrawal, error) {
	return u.resolve(ctx, model.Resolution{ID: id, Target: model.WithdrawalStatusRejected, Reason: reason, At: u.now()})
}

func (u *WithdrawalUseCase) resolve(ctx context.Context, res model.Resolution) (*model.Withdrawal, error) {
	if !model.WithdrawalStatusPending.CanTransition(res.Target) {
		return nil, domainErrors.ErrInvalidArgument
	}
	w, err := u.withdrawals.Resolve(ctx, res)
	if err != nil {
		return nil, err
	}
	observability.IncrementWithdrawalTransition(string(w.Status))
	if w.Status == model.WithdrawalStatusRejected {
		observability.IncrementLedgerOperation("withdrawal_refund", nil)
	}
	return w, nil
}

func (u *WithdrawalUseCase) notifyResolved(ctx context.Context, w model.Withdrawal) {
	if err := u.notifier.WithdrawalResolved(ctx, w); err != nil {
		u.logger.Warn("user notification failed",
			slog.String("request_id", w.ID.String()),
			slog.Int64("user_id", w.UserID),
			slog.String("error", err.Error()),
		)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultListLimit
	}
	return limit
}
