package usecase

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
)

// RateLimiter enforces the cooldown between token issuances. Recording the
// issuance time happens atomically in TokenRepository.Issue.
type RateLimiter struct {
	settings *SettingsUseCase
	wallets  repository.WalletRepository
	fallback time.Duration
	now      Clock
}

// NewRateLimiter constructs RateLimiter.
func NewRateLimiter(settings *SettingsUseCase, wallets repository.WalletRepository, policy Policy, now Clock) *RateLimiter {
	return &RateLimiter{settings: settings, wallets: wallets, fallback: policy.Cooldown, now: now}
}

// Window returns the active cooldown, or zero when the time_gap setting is off.
func (r *RateLimiter) Window(ctx context.Context) (time.Duration, error) {
	s, err := r.settings.Get(ctx, model.SettingTimeGap)
	if err != nil {
		return 0, err
	}
	if !s.Enabled {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Param(model.ParamCooldown, ""))
	if err != nil || d <= 0 {
		return r.fallback, nil
	}
	return d, nil
}

// Check returns how long userID still has to wait before the next issuance.
func (r *RateLimiter) Check(ctx context.Context, userID int64) (time.Duration, error) {
	window, err := r.Window(ctx)
	if err != nil {
		return 0, err
	}
	if window == 0 {
		return 0, nil
	}
	user, err := r.wallets.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return model.CooldownRemaining(user.LastIssuedAt, r.now(), window), nil
}
