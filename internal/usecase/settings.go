package usecase

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
)

// SettingsUseCase exposes feature toggles seeded from configuration defaults.
type SettingsUseCase struct {
	settings repository.SettingRepository
	admins   *Admins
	defaults map[string]model.Setting
	logger   *slog.Logger
}

// NewSettingsUseCase constructs SettingsUseCase.
func NewSettingsUseCase(settings repository.SettingRepository, policy Policy, admins *Admins, logger *slog.Logger) *SettingsUseCase {
	return &SettingsUseCase{
		settings: settings,
		admins:   admins,
		logger:   logger,
		defaults: map[string]model.Setting{
			model.SettingWithdraw: {Key: model.SettingWithdraw, Enabled: policy.WithdrawEnabled},
			model.SettingTimeGap: {
				Key:     model.SettingTimeGap,
				Enabled: policy.CooldownEnabled,
				Params:  map[string]string{model.ParamCooldown: policy.Cooldown.String()},
			},
			model.SettingGenLink: {Key: model.SettingGenLink, Enabled: true},
		},
	}
}

func (u *SettingsUseCase) defaultFor(key string) (model.Setting, error) {
	def, ok := u.defaults[key]
	if !ok {
		return model.Setting{}, domainErrors.ErrInvalidArgument
	}
	return def, nil
}

// Get returns the setting, creating it from defaults on first access.
func (u *SettingsUseCase) Get(ctx context.Context, key string) (*model.Setting, error) {
	def, err := u.defaultFor(key)
	if err != nil {
		return nil, err
	}
	return u.settings.Seed(ctx, def)
}

// Enabled reports whether the feature behind key is switched on.
func (u *SettingsUseCase) Enabled(ctx context.Context, key string) (bool, error) {
	s, err := u.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return s.Enabled, nil
}

// SetEnabled toggles a feature on behalf of an administrator.
func (u *SettingsUseCase) SetEnabled(ctx context.Context, adminID int64, key string, enabled bool) (*model.Setting, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	def, err := u.defaultFor(key)
	if err != nil {
		return nil, err
	}
	s, err := u.settings.SetEnabled(ctx, def, enabled)
	if err != nil {
		return nil, err
	}
	u.logger.Info("setting toggled",
		slog.String("key", key),
		slog.Bool("enabled", enabled),
		slog.Int64("admin_id", adminID),
	)
	return s, nil
}

// SetParam stores a named parameter of a setting on behalf of an administrator.
func (u *SettingsUseCase) SetParam(ctx context.Context, adminID int64, key, name, value string) (*model.Setting, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	def, err := u.defaultFor(key)
	if err != nil {
		return nil, err
	}
	if key == model.SettingTimeGap && name == model.ParamCooldown {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, domainErrors.ErrInvalidArgument
		}
		value = d.String()
	}
	s, err := u.settings.SetParam(ctx, def, name, value)
	if err != nil {
		return nil, err
	}
	u.logger.Info("setting parameter updated",
		slog.String("key", key),
		slog.String("param", name),
		slog.String("value", value),
		slog.Int64("admin_id", adminID),
	)
	return s, nil
}

// SetCooldown changes the time between token issuances.
func (u *SettingsUseCase) SetCooldown(ctx context.Context, adminID int64, d time.Duration) (*model.Setting, error) {
	if d <= 0 {
		return nil, domainErrors.ErrInvalidArgument
	}
	return u.SetParam(ctx, adminID, model.SettingTimeGap, model.ParamCooldown, d.String())
}

// Update changes the toggle and, for time_gap, the cooldown in one write so a
// failure leaves the setting untouched. A nil enabled or zero cooldown keeps
// that part as stored.
func (u *SettingsUseCase) Update(ctx context.Context, adminID int64, key string, enabled *bool, cooldown time.Duration) (*model.Setting, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	def, err := u.defaultFor(key)
	if err != nil {
		return nil, err
	}
	if enabled == nil && cooldown == 0 {
		return nil, domainErrors.ErrInvalidArgument
	}
	var params map[string]string
	if cooldown != 0 {
		if key != model.SettingTimeGap || cooldown < 0 {
			return nil, domainErrors.ErrInvalidArgument
		}
		params = map[string]string{model.ParamCooldown: cooldown.String()}
	}

	s, err := u.settings.Update(ctx, def, enabled, params)
	if err != nil {
		return nil, err
	}
	u.logger.Info("setting updated",
		slog.String("key", key),
		slog.Bool("enabled", s.Enabled),
		slog.String("cooldown", s.Param(model.ParamCooldown, "")),
		slog.Int64("admin_id", adminID),
	)
	return s, nil
}
