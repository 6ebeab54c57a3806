package repository

import (
	"context"
	"time"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// TokenRepository persists reward tokens.
type TokenRepository interface {
	// Issue stores the token and records the owner's issuance time in one
	// transaction, failing with a rate limit error while the cooldown is running.
	Issue(ctx context.Context, token model.RewardToken, cooldown time.Duration) error
	// Redeem claims an unused token owned by claimantID and credits reward.
	Redeem(ctx context.Context, code string, claimantID int64, reward model.Amount, ttl time.Duration, now time.Time) (*model.RewardToken, model.Amount, error)
	Get(ctx context.Context, code string) (*model.RewardToken, error)
}
