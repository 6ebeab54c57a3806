package test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

// FacadeStub implements the bot, HTTP and worker facades via function
// overrides. Unset functions return zero values.
type FacadeStub struct {
	Admins map[int64]bool

	RegisterFn           func(context.Context, int64) (*model.User, error)
	BalanceFn            func(context.Context, int64) (model.Amount, error)
	IssueTokenFn         func(context.Context, int64) (*model.IssuedToken, error)
	CooldownRemainingFn  func(context.Context, int64) (time.Duration, error)
	AdjustBalanceFn      func(context.Context, int64, int64, model.Amount) (model.Amount, error)
	RedeemTokenFn        func(context.Context, int64, string) (model.Amount, error)
	RedeemGiftCodeFn     func(context.Context, int64, string) (*model.GiftCode, model.Amount, error)
	RequestWithdrawalFn  func(context.Context, int64, string, string, model.Amount) (*model.Withdrawal, model.Amount, error)
	ResolveWithdrawalFn  func(context.Context, int64, uuid.UUID, model.WithdrawalAction) (*model.Withdrawal, error)
	WithdrawalsFn        func(context.Context, int64) ([]model.Withdrawal, error)
	SetFeatureFn         func(context.Context, int64, string, bool) (*model.Setting, error)
	SetCooldownFn        func(context.Context, int64, time.Duration) (*model.Setting, error)
	SettingFn            func(context.Context, string) (*model.Setting, error)
	UpdateSettingFn      func(context.Context, int64, string, *bool, time.Duration) (*model.Setting, error)
	GenerateGiftCodesFn  func(context.Context, int64, model.Amount, int) ([]model.GiftCode, error)
	PendingWithdrawalsFn func(context.Context, int64, int) ([]model.Withdrawal, error)
	HealthCheckFn        func(context.Context) error
}

// IsAdmin reports membership in Admins.
func (s FacadeStub) IsAdmin(userID int64) bool {
	return s.Admins[userID]
}

func (s FacadeStub) Register(ctx context.Context, userID int64) (*model.User, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, userID)
	}
	return &model.User{ID: userID}, nil
}

func (s FacadeStub) Balance(ctx context.Context, userID int64) (model.Amount, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, userID)
	}
	return 0, nil
}

func (s FacadeStub) IssueToken(ctx context.Context, userID int64) (*model.IssuedToken, error) {
	if s.IssueTokenFn != nil {
		return s.IssueTokenFn(ctx, userID)
	}
	return &model.IssuedToken{Token: model.RewardToken{Code: "CODE", OwnerID: userID}, Link: "https://t.me/bot?start=reward_CODE"}, nil
}

func (s FacadeStub) CooldownRemaining(ctx context.Context, userID int64) (time.Duration, error) {
	if s.CooldownRemainingFn != nil {
		return s.CooldownRemainingFn(ctx, userID)
	}
	return 0, nil
}

func (s FacadeStub) AdjustBalance(ctx context.Context, adminID, userID int64, delta model.Amount) (model.Amount, error) {
	if s.AdjustBalanceFn != nil {
		return s.AdjustBalanceFn(ctx, adminID, userID, delta)
	}
	return 0, domainErrors.ErrUnauthorized
}

func (s FacadeStub) RedeemToken(ctx context.Context, userID int64, code string) (model.Amount, error) {
	if s.RedeemTokenFn != nil {
		return s.RedeemTokenFn(ctx, userID, code)
	}
	return 0, nil
}

func (s FacadeStub) RedeemGiftCode(ctx context.Context, userID int64, code string) (*model.GiftCode, model.Amount, error) {
	if s.RedeemGiftCodeFn != nil {
		return s.RedeemGiftCodeFn(ctx, userID, code)
	}
	return nil, 0, domainErrors.ErrCodeNotFound
}

func (s FacadeStub) RequestWithdrawal(ctx context.Context, userID int64, method, account string, amount model.Amount) (*model.Withdrawal, model.Amount, error) {
	if s.RequestWithdrawalFn != nil {
		return s.RequestWithdrawalFn(ctx, userID, method, account, amount)
	}
	return nil, 0, domainErrors.ErrFeatureDisabled
}

func (s FacadeStub) ResolveWithdrawal(ctx context.Context, adminID int64, id uuid.UUID, action model.WithdrawalAction) (*model.Withdrawal, error) {
	if s.ResolveWithdrawalFn != nil {
		return s.ResolveWithdrawalFn(ctx, adminID, id, action)
	}
	return nil, domainErrors.ErrRequestNotFound
}

func (s FacadeStub) Withdrawals(ctx context.Context, userID int64) ([]model.Withdrawal, error) {
	if s.WithdrawalsFn != nil {
		return s.WithdrawalsFn(ctx, userID)
	}
	return nil, nil
}

func (s FacadeStub) SetFeature(ctx context.Context, adminID int64, key string, enabled bool) (*model.Setting, error) {
	if s.SetFeatureFn != nil {
		return s.SetFeatureFn(ctx, adminID, key, enabled)
	}
	return &model.Setting{Key: key, Enabled: enabled}, nil
}

func (s FacadeStub) SetCooldown(ctx context.Context, adminID int64, d time.Duration) (*model.Setting, error) {
	if s.SetCooldownFn != nil {
		return s.SetCooldownFn(ctx, adminID, d)
	}
	return &model.Setting{Key: model.SettingTimeGap, Enabled: true, Params: map[string]string{model.ParamCooldown: d.String()}}, nil
}

func (s FacadeStub) UpdateSetting(ctx context.Context, adminID int64, key string, enabled *bool, cooldown time.Duration) (*model.Setting, error) {
	if s.UpdateSettingFn != nil {
		return s.UpdateSettingFn(ctx, adminID, key, enabled, cooldown)
	}
	setting := &model.Setting{Key: key, Enabled: true, Params: map[string]string{}}
	if enabled != nil {
		setting.Enabled = *enabled
	}
	if cooldown > 0 {
		setting.Params[model.ParamCooldown] = cooldown.String()
	}
	return setting, nil
}

func (s FacadeStub) Setting(ctx context.Context, key string) (*model.Setting, error) {
	if s.SettingFn != nil {
		return s.SettingFn(ctx, key)
	}
	return &model.Setting{Key: key, Enabled: true}, nil
}

func (s FacadeStub) GenerateGiftCodes(ctx context.Context, adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error) {
	if s.GenerateGiftCodesFn != nil {
		return s.GenerateGiftCodesFn(ctx, adminID, amount, quantity)
	}
	return nil, domainErrors.ErrUnauthorized
}

func (s FacadeStub) PendingWithdrawals(ctx context.Context, adminID int64, limit int) ([]model.Withdrawal, error) {
	if s.PendingWithdrawalsFn != nil {
		return s.PendingWithdrawalsFn(ctx, adminID, limit)
	}
	return nil, nil
}

func (s FacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthCheckFn != nil {
		return s.HealthCheckFn(ctx)
	}
	return nil
}

// ExpireCall records a single expiry performed by the worker.
type ExpireCall struct {
	ID uuid.UUID
}

// WorkerFacadeStub serves stale withdrawals to the expiry worker.
type WorkerFacadeStub struct {
	mu       sync.Mutex
	Batches  [][]model.Withdrawal
	Calls    []ExpireCall
	Polls    int
	ListErr  error
	ExpireFn func(context.Context, uuid.UUID) (*model.Withdrawal, error)
}

// Lock allows tests to synchronise on internal state.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases internal state.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// StaleWithdrawals pops the next batch.
func (s *WorkerFacadeStub) StaleWithdrawals(ctx context.Context, limit int) ([]model.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Polls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	if limit > 0 && len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

// ExpireWithdrawal records the call and delegates to ExpireFn.
func (s *WorkerFacadeStub) ExpireWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, ExpireCall{ID: id})
	s.mu.Unlock()

	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, id)
	}
	return &model.Withdrawal{ID: id, Status: model.WithdrawalStatusRejected, Reason: "expired"}, nil
}
