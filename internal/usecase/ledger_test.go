package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

func TestLedgerCreditAndDebit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if balance, err := e.ledger.Balance(ctx, userU); err != nil || balance != 0 {
		t.Fatalf("expected zero balance for unknown user, got %s (%v)", balance, err)
	}

	balance, err := e.ledger.Credit(ctx, userU, 500, model.EntryManual, "bonus")
	if err != nil || balance != 500 {
		t.Fatalf("credit: %s %v", balance, err)
	}

	balance, err = e.ledger.Debit(ctx, userU, 200, model.EntryManual, "fee")
	if err != nil || balance != 300 {
		t.Fatalf("debit: %s %v", balance, err)
	}

	if _, err := e.ledger.Debit(ctx, userU, 301, model.EntryManual, "fee"); !errors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if balance, _ := e.ledger.Balance(ctx, userU); balance != 300 {
		t.Fatalf("failed debit changed balance to %s", balance)
	}
	e.assertConserved(t, userU)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, amount := range []model.Amount{0, -1} {
		if _, err := e.ledger.Credit(ctx, userU, amount, model.EntryManual, ""); !errors.Is(err, domainErrors.ErrInvalidAmount) {
			t.Fatalf("credit %s: expected invalid amount, got %v", amount, err)
		}
		if _, err := e.ledger.Debit(ctx, userU, amount, model.EntryManual, ""); !errors.Is(err, domainErrors.ErrInvalidAmount) {
			t.Fatalf("debit %s: expected invalid amount, got %v", amount, err)
		}
	}
}

func TestLedgerEnsureCreatesUser(t *testing.T) {
	e := newEnv(t)
	user, err := e.ledger.Ensure(context.Background(), userW)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if user.ID != userW || user.Balance != 0 {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLedgerAdjust(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.ledger.Adjust(ctx, userV, userU, 500); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for non admin, got %v", err)
	}

	balance, err := e.ledger.Adjust(ctx, adminID, userU, 500)
	if err != nil || balance != 500 {
		t.Fatalf("credit adjustment: %s %v", balance, err)
	}
	balance, err = e.ledger.Adjust(ctx, adminID, userU, -150)
	if err != nil || balance != 350 {
		t.Fatalf("debit adjustment: %s %v", balance, err)
	}
	if _, err := e.ledger.Adjust(ctx, adminID, userU, -351); !errors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := e.ledger.Adjust(ctx, adminID, userU, 0); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero delta, got %v", err)
	}

	entries := e.store.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected two journal entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Kind != model.EntryManual || entry.Ref != "admin:900" {
			t.Fatalf("unexpected journal entry %+v", entry)
		}
	}
	e.assertConserved(t, userU)
}
