package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

const (
	insertGiftCodeQuery = `INSERT INTO gift_codes (code, amount, used, created_by, created_at) VALUES ($1, $2, FALSE, $3, $4)`
	claimGiftCodeQuery  = `UPDATE gift_codes SET used = TRUE, used_by = $2, used_at = $3
                           WHERE code = $1 AND used = FALSE
                           RETURNING amount, created_by, created_at`
	giftCodeExistsQuery = `SELECT used FROM gift_codes WHERE code=$1`
	selectGiftCodeQuery = `SELECT code, amount, used, used_by, created_by, created_at, used_at FROM gift_codes WHERE code=$1`
)

func (r *giftCodeRepository) CreateBatch(ctx context.Context, codes []model.GiftCode) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, c := range codes {
			if _, err := tx.Exec(ctx, insertGiftCodeQuery, c.Code, c.Amount, c.CreatedBy, c.CreatedAt); err != nil {
				if isUniqueViolation(err) {
					return domainErrors.ErrAlreadyExists
				}
				return err
			}
		}
		return nil
	})
}

func (r *giftCodeRepository) Redeem(ctx context.Context, code string, userID int64, now time.Time) (*model.GiftCode, model.Amount, error) {
	var (
		gift    *model.GiftCode
		balance model.Amount
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		claimed := model.GiftCode{Code: code, Used: true, UsedBy: &userID, UsedAt: &now}
		err := tx.QueryRow(ctx, claimGiftCodeQuery, code, userID, now).Scan(&claimed.Amount, &claimed.CreatedBy, &claimed.CreatedAt)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			var used bool
			if err := tx.QueryRow(ctx, giftCodeExistsQuery, code).Scan(&used); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domainErrors.ErrCodeNotFound
				}
				return err
			}
			return domainErrors.ErrCodeAlreadyUsed
		}

		balance, err = r.storage.creditTx(ctx, tx, userID, claimed.Amount, model.EntryGiftCode, code)
		if err != nil {
			return err
		}
		gift = &claimed
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return gift, balance, nil
}

func (r *giftCodeRepository) Get(ctx context.Context, code string) (*model.GiftCode, error) {
	var g model.GiftCode
	err := r.storage.pool.QueryRow(ctx, selectGiftCodeQuery, code).Scan(&g.Code, &g.Amount, &g.Used, &g.UsedBy, &g.CreatedBy, &g.CreatedAt, &g.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrCodeNotFound
		}
		return nil, err
	}
	return &g, nil
}
