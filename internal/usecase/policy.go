package usecase

import (
	"time"

	"github.com/polkiloo/earnbot/internal/config"
	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

// Policy carries the business parameters taken from configuration.
type Policy struct {
	Reward          model.Amount
	TokenTTL        time.Duration
	MinWithdraw     model.Amount
	PendingTTL      time.Duration
	BotUsername     string
	Cooldown        time.Duration
	CooldownEnabled bool
	WithdrawEnabled bool
}

// NewPolicy builds Policy from configuration.
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		Reward:          cfg.RewardAmount,
		TokenTTL:        cfg.TokenTTL,
		MinWithdraw:     cfg.MinWithdraw,
		PendingTTL:      cfg.PendingTTL,
		BotUsername:     cfg.BotUsername,
		Cooldown:        cfg.Cooldown,
		CooldownEnabled: cfg.CooldownEnabled,
		WithdrawEnabled: cfg.WithdrawEnabled,
	}
}

// Clock returns the current time.
type Clock func() time.Time

// NewClock returns the wall clock.
func NewClock() Clock {
	return time.Now
}

// Admins authorizes privileged operations.
type Admins struct {
	ids map[int64]struct{}
}

// NewAdmins builds the admin set from configuration.
func NewAdmins(cfg *config.Config) *Admins {
	return AdminsOf(cfg.AdminIDs...)
}

// AdminsOf builds an admin set from explicit ids.
func AdminsOf(ids ...int64) *Admins {
	a := &Admins{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// IsAdmin reports whether id belongs to an administrator.
func (a *Admins) IsAdmin(id int64) bool {
	_, ok := a.ids[id]
	return ok
}

// Require fails with ErrUnauthorized unless id is an administrator.
func (a *Admins) Require(id int64) error {
	if !a.IsAdmin(id) {
		return domainErrors.ErrUnauthorized
	}
	return nil
}
