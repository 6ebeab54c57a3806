package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/earnbot/internal/domain/model"
	testhelpers "github.com/polkiloo/earnbot/internal/test"
)

const (
	adminID int64 = 900
	userU   int64 = 1
	userV   int64 = 2
	userW   int64 = 3
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	store       *testhelpers.MemoryStore
	clock       *testhelpers.FakeClock
	notifier    *testhelpers.NotifierStub
	policy      Policy
	settings    *SettingsUseCase
	limiter     *RateLimiter
	ledger      *LedgerUseCase
	tokens      *TokenUseCase
	gifts       *GiftCodeUseCase
	withdrawals *WithdrawalUseCase
}

type envOption func(*Policy, *envDeps)

type envDeps struct {
	shortener Shortener
	codes     CodeGenerator
	logger    *slog.Logger
}

func withPolicy(fn func(*Policy)) envOption {
	return func(p *Policy, _ *envDeps) { fn(p) }
}

func withShortener(s Shortener) envOption {
	return func(_ *Policy, d *envDeps) { d.shortener = s }
}

func withCodes(c CodeGenerator) envOption {
	return func(_ *Policy, d *envDeps) { d.codes = c }
}

func withLogger(l *slog.Logger) envOption {
	return func(_ *Policy, d *envDeps) { d.logger = l }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	policy := Policy{
		Reward:          model.MustParseAmount("1.5"),
		Cooldown:        time.Hour,
		CooldownEnabled: true,
		WithdrawEnabled: true,
		BotUsername:     "earn_bot",
	}
	deps := envDeps{codes: testhelpers.SequenceCodes(), logger: discardLogger()}
	for _, opt := range opts {
		opt(&policy, &deps)
	}

	e := &env{
		store:    testhelpers.NewMemoryStore(),
		clock:    testhelpers.NewFakeClock(t0),
		notifier: &testhelpers.NotifierStub{},
		policy:   policy,
	}
	logger := deps.logger
	admins := AdminsOf(adminID)

	e.settings = NewSettingsUseCase(e.store.Settings(), policy, admins, logger)
	e.limiter = NewRateLimiter(e.settings, e.store.Wallets(), policy, e.clock.Now)
	e.ledger = NewLedgerUseCase(e.store.Wallets(), admins, logger)
	e.tokens = NewTokenUseCase(e.store.Tokens(), e.settings, e.limiter, deps.shortener, testhelpers.IdentityStub("fallback_bot"), policy, deps.codes, e.clock.Now, logger)
	e.gifts = NewGiftCodeUseCase(e.store.GiftCodes(), admins, deps.codes, e.clock.Now, logger)
	e.withdrawals = NewWithdrawalUseCase(e.store.Withdrawals(), e.settings, admins, e.notifier, policy, e.clock.Now, logger)
	return e
}

func (e *env) assertConserved(t *testing.T, userID int64) {
	t.Helper()
	if got, want := e.store.Balance(userID), e.store.JournalSum(userID); got != want {
		t.Fatalf("balance %s differs from journal sum %s", got, want)
	}
	if e.store.Balance(userID) < 0 {
		t.Fatalf("negative balance %s", e.store.Balance(userID))
	}
}
