package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

const (
	ensureUserQuery = `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`
	selectUserQuery = `SELECT id, balance, last_issued_at, created_at FROM users WHERE id=$1`
	creditQuery     = `INSERT INTO users (id, balance) VALUES ($1, $2)
                       ON CONFLICT (id) DO UPDATE SET balance = users.balance + EXCLUDED.balance
                       RETURNING balance`
	debitQuery   = `UPDATE users SET balance = balance - $2 WHERE id = $1 AND balance >= $2 RETURNING balance`
	journalQuery = `INSERT INTO ledger_entries (user_id, delta, kind, ref) VALUES ($1, $2, $3, $4)`
)

func (s *Storage) creditTx(ctx context.Context, tx pgx.Tx, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	var balance model.Amount
	if err := tx.QueryRow(ctx, creditQuery, userID, amount).Scan(&balance); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, journalQuery, userID, amount, kind, ref); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *Storage) debitTx(ctx context.Context, tx pgx.Tx, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	var balance model.Amount
	if err := tx.QueryRow(ctx, debitQuery, userID, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrInsufficientFunds
		}
		return 0, err
	}
	if _, err := tx.Exec(ctx, journalQuery, userID, -amount, kind, ref); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *walletRepository) Ensure(ctx context.Context, userID int64) (*model.User, error) {
	if _, err := r.storage.pool.Exec(ctx, ensureUserQuery, userID); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *walletRepository) Get(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := r.storage.pool.QueryRow(ctx, selectUserQuery, userID).Scan(&u.ID, &u.Balance, &u.LastIssuedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	var balance model.Amount
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = r.storage.creditTx(ctx, tx, userID, amount, kind, ref)
		return err
	})
	return balance, err
}

func (r *walletRepository) Debit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	var balance model.Amount
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = r.storage.debitTx(ctx, tx, userID, amount, kind, ref)
		return err
	})
	return balance, err
}
