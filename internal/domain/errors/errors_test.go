package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestSentinelErrorsCarryStableCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		code string
		kind Kind
	}{
		{ErrInvalidAmount, "invalid_amount", KindValidation},
		{ErrTokenNotFound, "token_not_found", KindNotFound},
		{ErrTokenAlreadyUsed, "token_already_used", KindState},
		{ErrTokenNotOwned, "token_not_owned", KindState},
		{ErrAlreadyResolved, "already_resolved", KindState},
		{ErrCodeAlreadyUsed, "code_already_used", KindState},
		{ErrInsufficientFunds, "insufficient_funds", KindInsufficientFunds},
		{ErrUnauthorized, "unauthorized", KindUnauthorized},
		{ErrNotificationFailed, "notification_failed", KindExternal},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match %v", tc.err)
			}
			if got := Code(wrapped); got != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, got)
			}
			if got := KindOf(wrapped); got != tc.kind {
				t.Fatalf("expected kind %q, got %q", tc.kind, got)
			}
		})
	}
}

func TestRateLimitedErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("issue: %w", &RateLimitedError{Remaining: 30 * time.Minute})
	if !stdErrors.Is(err, ErrRateLimited) {
		t.Fatal("expected rate limited error to match sentinel")
	}
	if Code(err) != "rate_limited" {
		t.Fatalf("unexpected code %q", Code(err))
	}
	var rl *RateLimitedError
	if !stdErrors.As(err, &rl) || rl.Remaining != 30*time.Minute {
		t.Fatalf("expected remaining duration to be preserved, got %+v", rl)
	}
}

func TestExternalServiceErrorUnwraps(t *testing.T) {
	cause := stdErrors.New("timeout")
	err := NewExternal("telegram", ErrNotificationFailed, cause)
	if !stdErrors.Is(err, ErrNotificationFailed) {
		t.Fatal("expected external error to match notification failure")
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected external error to wrap cause")
	}
	if KindOf(err) != KindExternal {
		t.Fatalf("unexpected kind %q", KindOf(err))
	}
}

func TestUnknownErrorIsInternal(t *testing.T) {
	if Code(stdErrors.New("boom")) != "internal" {
		t.Fatal("expected internal code for unknown errors")
	}
	if KindOf(nil) != KindInternal {
		t.Fatal("expected internal kind for nil")
	}
}
