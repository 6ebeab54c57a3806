package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

const (
	withdrawalColumns     = `id, user_id, method, account, amount, status, created_at, resolved_at, resolved_by, reason`
	insertWithdrawalQuery = `INSERT INTO withdrawal_requests (id, user_id, method, account, amount, status, created_at)
                             VALUES ($1, $2, $3, $4, $5, $6, $7)`
	resolveWithdrawalQuery = `UPDATE withdrawal_requests SET status = $2, resolved_at = $3, resolved_by = $4, reason = $5
                              WHERE id = $1 AND status = 'pending'
                              RETURNING ` + withdrawalColumns
	withdrawalExistsQuery = `SELECT status FROM withdrawal_requests WHERE id=$1`
	selectWithdrawalQuery = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id=$1`
	userWithdrawalsQuery  = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
                             WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	pendingWithdrawalsQuery = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
                               WHERE status = 'pending' ORDER BY created_at LIMIT $1`
	staleWithdrawalsQuery = `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests
                             WHERE status = 'pending' AND created_at < $1 ORDER BY created_at LIMIT $2`
)

func (r *withdrawalRepository) Create(ctx context.Context, w model.Withdrawal) (model.Amount, error) {
	var balance model.Amount
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = r.storage.debitTx(ctx, tx, w.UserID, w.Amount, model.EntryWithdrawalHold, w.ID.String())
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertWithdrawalQuery, w.ID, w.UserID, w.Method, w.Account, w.Amount, model.WithdrawalStatusPending, w.CreatedAt)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *withdrawalRepository) Resolve(ctx context.Context, res model.Resolution) (*model.Withdrawal, error) {
	var resolved *model.Withdrawal
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		w, err := scanWithdrawal(tx.QueryRow(ctx, resolveWithdrawalQuery, res.ID, res.Target, res.At, res.ActorID, res.Reason))
		if err != nil {
			if !errors.Is(err, domainErrors.ErrRequestNotFound) {
				return err
			}
			var status model.WithdrawalStatus
			if err := tx.QueryRow(ctx, withdrawalExistsQuery, res.ID).Scan(&status); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domainErrors.ErrRequestNotFound
				}
				return err
			}
			return domainErrors.ErrAlreadyResolved
		}

		if res.Target == model.WithdrawalStatusRejected {
			if _, err := r.storage.creditTx(ctx, tx, w.UserID, w.Amount, model.EntryWithdrawalRefund, w.ID.String()); err != nil {
				return err
			}
		}
		resolved = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *withdrawalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	return scanWithdrawal(r.storage.pool.QueryRow(ctx, selectWithdrawalQuery, id))
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Withdrawal, error) {
	return r.list(ctx, userWithdrawalsQuery, userID, limit)
}

func (r *withdrawalRepository) ListPending(ctx context.Context, limit int) ([]model.Withdrawal, error) {
	return r.list(ctx, pendingWithdrawalsQuery, limit)
}

func (r *withdrawalRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]model.Withdrawal, error) {
	return r.list(ctx, staleWithdrawalsQuery, before, limit)
}

func (r *withdrawalRepository) list(ctx context.Context, query string, args ...any) ([]model.Withdrawal, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanWithdrawal(row pgx.Row) (*model.Withdrawal, error) {
	var w model.Withdrawal
	err := row.Scan(&w.ID, &w.UserID, &w.Method, &w.Account, &w.Amount, &w.Status, &w.CreatedAt, &w.ResolvedAt, &w.ResolvedBy, &w.Reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrRequestNotFound
		}
		return nil, err
	}
	return &w, nil
}
