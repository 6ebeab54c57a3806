package repository

import (
	"context"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// WalletRepository applies atomic balance mutations and journals them.
type WalletRepository interface {
	Ensure(ctx context.Context, userID int64) (*model.User, error)
	Get(ctx context.Context, userID int64) (*model.User, error)
	Credit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error)
	Debit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error)
}
