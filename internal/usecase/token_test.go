package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	testhelpers "github.com/polkiloo/earnbot/internal/test"
)

func TestTokenIssueAndRedeemOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	issued, err := e.tokens.Issue(ctx, userU)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Token.OwnerID != userU || issued.Token.Used {
		t.Fatalf("unexpected token %+v", issued.Token)
	}
	if issued.Link != "https://t.me/earn_bot?start=reward_"+issued.Token.Code {
		t.Fatalf("unexpected link %q", issued.Link)
	}

	_, balance, err := e.tokens.Redeem(ctx, issued.Token.Code, userU)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if balance != model.MustParseAmount("1.5") {
		t.Fatalf("expected balance 1.5, got %s", balance)
	}

	if _, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userU); !errors.Is(err, domainErrors.ErrTokenAlreadyUsed) {
		t.Fatalf("expected already used, got %v", err)
	}
	if got := e.store.Balance(userU); got != model.MustParseAmount("1.5") {
		t.Fatalf("balance changed after second redeem: %s", got)
	}
	e.assertConserved(t, userU)
}

func TestTokenRedeemByNonOwnerNeverMutates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	issued, err := e.tokens.Issue(ctx, userU)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userV); !errors.Is(err, domainErrors.ErrTokenNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
	if _, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userU); err != nil {
		t.Fatalf("owner redeem: %v", err)
	}
	if _, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userV); !errors.Is(err, domainErrors.ErrTokenNotOwned) {
		t.Fatalf("expected not owned for used token, got %v", err)
	}
	if got := e.store.Balance(userV); got != 0 {
		t.Fatalf("non-owner balance changed: %s", got)
	}
}

func TestTokenRedeemUnknownAndMalformed(t *testing.T) {
	e := newEnv(t)
	for _, code := range []string{"MISSING1", "", "bad code!"} {
		if _, _, err := e.tokens.Redeem(context.Background(), code, userU); !errors.Is(err, domainErrors.ErrTokenNotFound) {
			t.Fatalf("expected not found for %q, got %v", code, err)
		}
	}
}

func TestTokenRedeemNormalizesCode(t *testing.T) {
	e := newEnv(t)
	issued, err := e.tokens.Issue(context.Background(), userU)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := e.tokens.Redeem(context.Background(), "  "+strings.ToLower(issued.Token.Code)+" ", userU); err != nil {
		t.Fatalf("expected normalized code to redeem, got %v", err)
	}
}

func TestTokenExpiresAfterValidityWindow(t *testing.T) {
	e := newEnv(t, withPolicy(func(p *Policy) { p.TokenTTL = 24 * time.Hour }))
	ctx := context.Background()

	issued, err := e.tokens.Issue(ctx, userU)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	e.clock.Advance(25 * time.Hour)

	if _, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userU); !errors.Is(err, domainErrors.ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if e.store.Balance(userU) != 0 {
		t.Fatal("expired token must not credit")
	}
}

func TestTokenIssueCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.tokens.Issue(ctx, userU); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	e.clock.Advance(30 * time.Minute)
	_, err := e.tokens.Issue(ctx, userU)
	var rl *domainErrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if rl.Remaining != 30*time.Minute {
		t.Fatalf("expected 30m remaining, got %v", rl.Remaining)
	}

	remaining, err := e.limiter.Check(ctx, userU)
	if err != nil || remaining != 30*time.Minute {
		t.Fatalf("expected limiter check to agree, got %v %v", remaining, err)
	}

	e.clock.Advance(31 * time.Minute)
	if _, err := e.tokens.Issue(ctx, userU); err != nil {
		t.Fatalf("issue after cooldown: %v", err)
	}
}

func TestTokenIssueWithoutCooldownWhenDisabled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.settings.SetEnabled(ctx, adminID, model.SettingTimeGap, false); err != nil {
		t.Fatalf("disable cooldown: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.tokens.Issue(ctx, userU); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}
}

func TestTokenIssueFeatureDisabled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.settings.SetEnabled(ctx, adminID, model.SettingGenLink, false); err != nil {
		t.Fatalf("disable genlink: %v", err)
	}
	if _, err := e.tokens.Issue(ctx, userU); !errors.Is(err, domainErrors.ErrFeatureDisabled) {
		t.Fatalf("expected feature disabled, got %v", err)
	}
}

func TestTokenIssueRetriesOnCollision(t *testing.T) {
	e := newEnv(t, withCodes(testhelpers.ScriptedCodes("TAKEN", "TAKEN", "FRESH")))
	e.store.PutToken(model.RewardToken{Code: "TAKEN", OwnerID: userV, CreatedAt: t0})

	issued, err := e.tokens.Issue(context.Background(), userU)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Token.Code != "FRESH" {
		t.Fatalf("expected retry to use FRESH, got %s", issued.Token.Code)
	}
}

func TestTokenIssueGivesUpAfterRepeatedCollisions(t *testing.T) {
	e := newEnv(t, withCodes(testhelpers.ScriptedCodes("TAKEN", "TAKEN", "TAKEN")))
	e.store.PutToken(model.RewardToken{Code: "TAKEN", OwnerID: userV, CreatedAt: t0})

	if _, err := e.tokens.Issue(context.Background(), userU); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if remaining, _ := e.limiter.Check(context.Background(), userU); remaining != 0 {
		t.Fatalf("failed issuance must not start cooldown, got %v", remaining)
	}
}

func TestTokenLinkShortening(t *testing.T) {
	t.Run("short link used", func(t *testing.T) {
		e := newEnv(t, withShortener(testhelpers.ShortenerStub{}))
		issued, err := e.tokens.Issue(context.Background(), userU)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if issued.Link != "https://short.test/x" {
			t.Fatalf("expected short link, got %q", issued.Link)
		}
	})

	t.Run("falls back on failure", func(t *testing.T) {
		var logs bytes.Buffer
		e := newEnv(t,
			withLogger(slog.New(slog.NewTextHandler(&logs, nil))),
			withShortener(testhelpers.ShortenerStub{ShortenFn: func(context.Context, string) (string, error) {
				return "", errors.New("timeout")
			}}),
		)
		issued, err := e.tokens.Issue(context.Background(), userU)
		if err != nil {
			t.Fatalf("shortener failure must not fail issuance: %v", err)
		}
		if !strings.HasPrefix(issued.Link, "https://t.me/earn_bot?start=reward_") {
			t.Fatalf("expected original link, got %q", issued.Link)
		}
		if !strings.Contains(logs.String(), "code=shortener_failed") || !strings.Contains(logs.String(), "shortener: timeout") {
			t.Fatalf("expected classified shortener failure in logs, got %q", logs.String())
		}
	})

	t.Run("identity used without configured username", func(t *testing.T) {
		e := newEnv(t, withPolicy(func(p *Policy) { p.BotUsername = "" }))
		if got := e.tokens.DeepLink("ABC"); got != "https://t.me/fallback_bot?start=reward_ABC" {
			t.Fatalf("unexpected link %q", got)
		}
	})
}

func TestTokenConcurrentRedeemCreditsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	issued, err := e.tokens.Issue(ctx, userU)
	require.NoError(t, err)

	const attempts = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  = map[string]int{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.tokens.Redeem(ctx, issued.Token.Code, userU)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures[domainErrors.Code(err)]++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, failures["token_already_used"])
	assert.Equal(t, model.MustParseAmount("1.5"), e.store.Balance(userU))
	e.assertConserved(t, userU)
}

func TestTokenConcurrentIssueHonoursCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const attempts = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		issued  int
		limited int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.tokens.Issue(ctx, userU)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case errors.Is(err, domainErrors.ErrRateLimited):
				limited++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, issued)
	assert.Equal(t, attempts-1, limited)
}
