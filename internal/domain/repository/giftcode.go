package repository

import (
	"context"
	"time"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// GiftCodeRepository persists admin-issued gift codes.
type GiftCodeRepository interface {
	CreateBatch(ctx context.Context, codes []model.GiftCode) error
	Redeem(ctx context.Context, code string, userID int64, now time.Time) (*model.GiftCode, model.Amount, error)
	Get(ctx context.Context, code string) (*model.GiftCode, error)
}
