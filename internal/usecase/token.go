package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
	"github.com/polkiloo/earnbot/internal/observability"
)

// DeepLinkPrefix marks reward tokens in the bot start parameter.
const DeepLinkPrefix = "reward_"

// Shortener turns a long URL into a short one.
type Shortener interface {
	Shorten(ctx context.Context, url string) (string, error)
}

// BotIdentity names the bot account deep links point to.
type BotIdentity interface {
	Username() string
}

// TokenUseCase issues and redeems reward tokens.
type TokenUseCase struct {
	tokens    repository.TokenRepository
	settings  *SettingsUseCase
	limiter   *RateLimiter
	shortener Shortener
	identity  BotIdentity
	policy    Policy
	codes     CodeGenerator
	now       Clock
	logger    *slog.Logger
}

// NewTokenUseCase constructs TokenUseCase.
func NewTokenUseCase(
	tokens repository.TokenRepository,
	settings *SettingsUseCase,
	limiter *RateLimiter,
	shortener Shortener,
	identity BotIdentity,
	policy Policy,
	codes CodeGenerator,
	now Clock,
	logger *slog.Logger,
) *TokenUseCase {
	return &TokenUseCase{
		tokens:    tokens,
		settings:  settings,
		limiter:   limiter,
		shortener: shortener,
		identity:  identity,
		policy:    policy,
		codes:     codes,
		now:       now,
		logger:    logger,
	}
}

// Issue creates a token for userID unless the cooldown is still running.
func (u *TokenUseCase) Issue(ctx context.Context, userID int64) (*model.IssuedToken, error) {
	enabled, err := u.settings.Enabled(ctx, model.SettingGenLink)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, domainErrors.ErrFeatureDisabled
	}

	window, err := u.limiter.Window(ctx)
	if err != nil {
		return nil, err
	}

	now := u.now()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := u.codes()
		if err != nil {
			return nil, fmt.Errorf("generate token code: %w", err)
		}

		token := model.RewardToken{Code: code, OwnerID: userID, CreatedAt: now}
		err = u.tokens.Issue(ctx, token, window)
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			continue
		}
		observability.IncrementTokenEvent("issue", err)
		if err != nil {
			return nil, err
		}

		return &model.IssuedToken{Token: token, Link: u.shorten(ctx, u.DeepLink(code))}, nil
	}

	observability.IncrementTokenEvent("issue", domainErrors.ErrAlreadyExists)
	return nil, fmt.Errorf("issue token after %d attempts: %w", maxCodeAttempts, domainErrors.ErrAlreadyExists)
}

// Redeem claims a token for its owner and credits the configured reward.
func (u *TokenUseCase) Redeem(ctx context.Context, code string, claimantID int64) (*model.RewardToken, model.Amount, error) {
	code = NormalizeCode(code)
	if !ValidCode(code) {
		observability.IncrementTokenEvent("redeem", domainErrors.ErrTokenNotFound)
		return nil, 0, domainErrors.ErrTokenNotFound
	}

	token, balance, err := u.tokens.Redeem(ctx, code, claimantID, u.policy.Reward, u.policy.TokenTTL, u.now())
	observability.IncrementTokenEvent("redeem", err)
	if err != nil {
		return nil, 0, err
	}
	observability.IncrementLedgerOperation("token_reward", nil)
	return token, balance, nil
}

// DeepLink returns the bot start link carrying code.
func (u *TokenUseCase) DeepLink(code string) string {
	username := u.policy.BotUsername
	if username == "" && u.identity != nil {
		username = u.identity.Username()
	}
	return fmt.Sprintf("https://t.me/%s?start=%s%s", username, DeepLinkPrefix, code)
}

// Cooldown returns how long userID must wait before the next link.
func (u *TokenUseCase) Cooldown(ctx context.Context, userID int64) (time.Duration, error) {
	return u.limiter.Check(ctx, userID)
}

func (u *TokenUseCase) shorten(ctx context.Context, link string) string {
	if u.shortener == nil {
		return link
	}
	short, err := u.shortener.Shorten(ctx, link)
	if err != nil || short == "" {
		if err != nil {
			err = domainErrors.NewExternal("shortener", domainErrors.ErrShortenerFailed, err)
			u.logger.Warn("link shortener failed, using original link",
				slog.String("code", domainErrors.Code(err)),
				slog.String("error", err.Error()),
			)
		}
		observability.IncrementShortener("fallback")
		return link
	}
	observability.IncrementShortener("ok")
	return short
}
