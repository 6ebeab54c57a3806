package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// WithdrawalRepository stores escrowed withdrawal requests.
type WithdrawalRepository interface {
	// Create debits the amount and stores a pending request atomically.
	Create(ctx context.Context, w model.Withdrawal) (model.Amount, error)
	// Resolve moves a pending request to a terminal status, refunding on rejection.
	Resolve(ctx context.Context, res model.Resolution) (*model.Withdrawal, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Withdrawal, error)
	ListPending(ctx context.Context, limit int) ([]model.Withdrawal, error)
	ListStale(ctx context.Context, before time.Time, limit int) ([]model.Withdrawal, error)
}
