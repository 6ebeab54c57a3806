package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
	"github.com/polkiloo/earnbot/internal/observability"
)

// MaxGiftBatch bounds the number of codes generated by one request.
const MaxGiftBatch = 1000

// GiftCodeUseCase generates and redeems admin-issued gift codes.
type GiftCodeUseCase struct {
	codes  repository.GiftCodeRepository
	admins *Admins
	gen    CodeGenerator
	now    Clock
	logger *slog.Logger
}

// NewGiftCodeUseCase constructs GiftCodeUseCase.
func NewGiftCodeUseCase(codes repository.GiftCodeRepository, admins *Admins, gen CodeGenerator, now Clock, logger *slog.Logger) *GiftCodeUseCase {
	return &GiftCodeUseCase{codes: codes, admins: admins, gen: gen, now: now, logger: logger}
}

// GenerateBatch creates quantity unused codes worth amount each.
func (u *GiftCodeUseCase) GenerateBatch(ctx context.Context, adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error) {
	if err := u.admins.Require(adminID); err != nil {
		return nil, err
	}
	if !amount.Positive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	if quantity < 1 || quantity > MaxGiftBatch {
		return nil, domainErrors.ErrInvalidQuantity
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		batch, err := u.newBatch(adminID, amount, quantity)
		if err != nil {
			return nil, err
		}
		err = u.codes.CreateBatch(ctx, batch)
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			continue
		}
		observability.IncrementGiftCodeEvent("generate", err)
		if err != nil {
			return nil, err
		}
		u.logger.Info("gift codes generated",
			slog.Int64("admin_id", adminID),
			slog.Int("quantity", quantity),
			slog.String("amount", amount.String()),
		)
		return batch, nil
	}

	observability.IncrementGiftCodeEvent("generate", domainErrors.ErrAlreadyExists)
	return nil, fmt.Errorf("generate gift codes after %d attempts: %w", maxCodeAttempts, domainErrors.ErrAlreadyExists)
}

func (u *GiftCodeUseCase) newBatch(adminID int64, amount model.Amount, quantity int) ([]model.GiftCode, error) {
	now := u.now()
	seen := make(map[string]struct{}, quantity)
	batch := make([]model.GiftCode, 0, quantity)
	for len(batch) < quantity {
		code, err := u.gen()
		if err != nil {
			return nil, fmt.Errorf("generate gift code: %w", err)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		batch = append(batch, model.GiftCode{Code: code, Amount: amount, CreatedBy: adminID, CreatedAt: now})
	}
	return batch, nil
}

// Redeem marks the code used by userID and credits its amount.
func (u *GiftCodeUseCase) Redeem(ctx context.Context, code string, userID int64) (*model.GiftCode, model.Amount, error) {
	code = NormalizeCode(code)
	if !ValidCode(code) {
		observability.IncrementGiftCodeEvent("redeem", domainErrors.ErrCodeNotFound)
		return nil, 0, domainErrors.ErrCodeNotFound
	}

	gift, balance, err := u.codes.Redeem(ctx, code, userID, u.now())
	observability.IncrementGiftCodeEvent("redeem", err)
	if err != nil {
		return nil, 0, err
	}
	observability.IncrementLedgerOperation("gift_code", nil)
	return gift, balance, nil
}
