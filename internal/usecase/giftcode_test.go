package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	testhelpers "github.com/polkiloo/earnbot/internal/test"
)

func TestGiftCodeSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.PutGiftCode(model.GiftCode{Code: "G1", Amount: model.MustParseAmount("10"), CreatedBy: adminID, CreatedAt: t0})

	gift, balance, err := e.gifts.Redeem(ctx, "g1", userV)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if balance != model.MustParseAmount("10") || !gift.Used || gift.UsedBy == nil || *gift.UsedBy != userV {
		t.Fatalf("unexpected redemption %+v balance %s", gift, balance)
	}

	if _, _, err := e.gifts.Redeem(ctx, "G1", userW); !errors.Is(err, domainErrors.ErrCodeAlreadyUsed) {
		t.Fatalf("expected code already used, got %v", err)
	}
	if e.store.Balance(userW) != 0 {
		t.Fatal("second redeemer must not be credited")
	}
	e.assertConserved(t, userV)
}

func TestGiftCodeUnknown(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.gifts.Redeem(context.Background(), "NOPE", userV); !errors.Is(err, domainErrors.ErrCodeNotFound) {
		t.Fatalf("expected code not found, got %v", err)
	}
}

func TestGiftCodeGenerateBatchValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ten := model.MustParseAmount("10")

	cases := []struct {
		name     string
		admin    int64
		amount   model.Amount
		quantity int
		want     error
	}{
		{"not admin", userU, ten, 1, domainErrors.ErrUnauthorized},
		{"zero amount", adminID, 0, 1, domainErrors.ErrInvalidAmount},
		{"negative amount", adminID, -5, 1, domainErrors.ErrInvalidAmount},
		{"zero quantity", adminID, ten, 0, domainErrors.ErrInvalidQuantity},
		{"too many", adminID, ten, MaxGiftBatch + 1, domainErrors.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.gifts.GenerateBatch(ctx, tc.admin, tc.amount, tc.quantity); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGiftCodeGenerateBatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	batch, err := e.gifts.GenerateBatch(ctx, adminID, model.MustParseAmount("2.5"), 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 codes, got %d", len(batch))
	}
	for _, g := range batch {
		if g.Used || g.CreatedBy != adminID || g.Amount != 250 {
			t.Fatalf("unexpected code %+v", g)
		}
		if _, _, err := e.gifts.Redeem(ctx, g.Code, userU); err != nil {
			t.Fatalf("redeem %s: %v", g.Code, err)
		}
	}
	if got := e.store.Balance(userU); got != model.MustParseAmount("12.5") {
		t.Fatalf("expected balance 12.5, got %s", got)
	}
}

func TestGiftCodeGenerateBatchRetriesOnCollision(t *testing.T) {
	e := newEnv(t, withCodes(testhelpers.ScriptedCodes("TAKEN", "NEW1")))
	e.store.PutGiftCode(model.GiftCode{Code: "TAKEN", Amount: 100, CreatedBy: adminID, CreatedAt: t0})

	batch, err := e.gifts.GenerateBatch(context.Background(), adminID, 100, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if batch[0].Code != "NEW1" {
		t.Fatalf("expected retried code NEW1, got %s", batch[0].Code)
	}
}

func TestGiftCodeConcurrentRedeem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.PutGiftCode(model.GiftCode{Code: "RACE", Amount: model.MustParseAmount("10"), CreatedBy: adminID, CreatedAt: t0})

	const users = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, _, err := e.gifts.Redeem(ctx, "RACE", userID); err == nil {
				successes.Add(1)
			} else {
				assert.ErrorIs(t, err, domainErrors.ErrCodeAlreadyUsed)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	var total model.Amount
	for i := 0; i < users; i++ {
		total += e.store.Balance(int64(100 + i))
	}
	assert.Equal(t, model.MustParseAmount("10"), total)
}
