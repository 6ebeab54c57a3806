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
	recordIssuanceQuery = `UPDATE users SET last_issued_at = $2
                           WHERE id = $1 AND (last_issued_at IS NULL OR $3::timestamptz IS NULL OR last_issued_at <= $3)
                           RETURNING id`
	lastIssuedQuery  = `SELECT last_issued_at FROM users WHERE id=$1`
	insertTokenQuery = `INSERT INTO reward_tokens (code, owner_id, used, created_at) VALUES ($1, $2, FALSE, $3)`
	claimTokenQuery  = `UPDATE reward_tokens SET used = TRUE, used_at = $3
                        WHERE code = $1 AND owner_id = $2 AND used = FALSE
                          AND ($4::timestamptz IS NULL OR created_at >= $4)
                        RETURNING owner_id, created_at`
	selectTokenQuery = `SELECT code, owner_id, used, created_at, used_at FROM reward_tokens WHERE code=$1`
)

func (r *tokenRepository) Issue(ctx context.Context, token model.RewardToken, cooldown time.Duration) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureUserQuery, token.OwnerID); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRow(ctx, recordIssuanceQuery, token.OwnerID, token.CreatedAt, cutoff(token.CreatedAt, cooldown)).Scan(&id)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			var last *time.Time
			if err := tx.QueryRow(ctx, lastIssuedQuery, token.OwnerID).Scan(&last); err != nil {
				return err
			}
			return &domainErrors.RateLimitedError{Remaining: model.CooldownRemaining(last, token.CreatedAt, cooldown)}
		}

		if _, err := tx.Exec(ctx, insertTokenQuery, token.Code, token.OwnerID, token.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r *tokenRepository) Redeem(ctx context.Context, code string, claimantID int64, reward model.Amount, ttl time.Duration, now time.Time) (*model.RewardToken, model.Amount, error) {
	var (
		token   *model.RewardToken
		balance model.Amount
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		claimed := model.RewardToken{Code: code, Used: true, UsedAt: &now}
		err := tx.QueryRow(ctx, claimTokenQuery, code, claimantID, now, cutoff(now, ttl)).Scan(&claimed.OwnerID, &claimed.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return classifyTokenFailure(ctx, tx, code, claimantID, ttl, now)
			}
			return err
		}

		balance, err = r.storage.creditTx(ctx, tx, claimantID, reward, model.EntryTokenReward, code)
		if err != nil {
			return err
		}
		token = &claimed
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return token, balance, nil
}

// classifyTokenFailure explains why the conditional claim matched no row.
func classifyTokenFailure(ctx context.Context, tx pgx.Tx, code string, claimantID int64, ttl time.Duration, now time.Time) error {
	t, err := scanToken(tx.QueryRow(ctx, selectTokenQuery, code))
	if err != nil {
		return err
	}
	switch {
	case t.OwnerID != claimantID:
		return domainErrors.ErrTokenNotOwned
	case t.Used:
		return domainErrors.ErrTokenAlreadyUsed
	case t.Expired(ttl, now):
		return domainErrors.ErrTokenExpired
	default:
		return domainErrors.ErrTokenAlreadyUsed
	}
}

func (r *tokenRepository) Get(ctx context.Context, code string) (*model.RewardToken, error) {
	return scanToken(r.storage.pool.QueryRow(ctx, selectTokenQuery, code))
}

func scanToken(row pgx.Row) (*model.RewardToken, error) {
	var t model.RewardToken
	if err := row.Scan(&t.Code, &t.OwnerID, &t.Used, &t.CreatedAt, &t.UsedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}
