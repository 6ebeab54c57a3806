package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind groups domain failures by how callers should react to them.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindState             Kind = "state"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindRateLimited       Kind = "rate_limited"
	KindUnauthorized      Kind = "unauthorized"
	KindExternal          Kind = "external"
	KindInternal          Kind = "internal"
)

// Error is a terminal domain failure with a stable reason code.
type Error struct {
	Code string
	Kind Kind
}

func (e *Error) Error() string {
	return strings.ReplaceAll(e.Code, "_", " ")
}

func newError(kind Kind, code string) *Error {
	return &Error{Code: code, Kind: kind}
}

var (
	ErrInvalidAmount   = newError(KindValidation, "invalid_amount")
	ErrBelowMinimum    = newError(KindValidation, "below_minimum")
	ErrInvalidArgument = newError(KindValidation, "invalid_argument")
	ErrInvalidQuantity = newError(KindValidation, "invalid_quantity")

	ErrNotFound        = newError(KindNotFound, "not_found")
	ErrUserNotFound    = newError(KindNotFound, "user_not_found")
	ErrTokenNotFound   = newError(KindNotFound, "token_not_found")
	ErrCodeNotFound    = newError(KindNotFound, "code_not_found")
	ErrRequestNotFound = newError(KindNotFound, "request_not_found")

	ErrTokenAlreadyUsed = newError(KindState, "token_already_used")
	ErrTokenNotOwned    = newError(KindState, "token_not_owned")
	ErrTokenExpired     = newError(KindState, "token_expired")
	ErrCodeAlreadyUsed  = newError(KindState, "code_already_used")
	ErrAlreadyResolved  = newError(KindState, "already_resolved")
	ErrFeatureDisabled  = newError(KindState, "feature_disabled")
	ErrAlreadyExists    = newError(KindState, "already_exists")

	ErrInsufficientFunds = newError(KindInsufficientFunds, "insufficient_funds")
	ErrRateLimited       = newError(KindRateLimited, "rate_limited")
	ErrUnauthorized      = newError(KindUnauthorized, "unauthorized")

	ErrNotificationFailed = newError(KindExternal, "notification_failed")
	ErrShortenerFailed    = newError(KindExternal, "shortener_failed")
)

// RateLimitedError reports how long the caller has to wait.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Remaining.Round(time.Second))
}

// Is makes RateLimitedError match ErrRateLimited.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// ExternalServiceError wraps a failed call to a collaborator.
type ExternalServiceError struct {
	Service string
	Cause   *Error
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() []error {
	return []error{e.Cause, e.Err}
}

// NewExternal builds an ExternalServiceError classified by cause.
func NewExternal(service string, cause *Error, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause, Err: err}
}

// Code returns the stable reason code carried by err, or "internal".
func Code(err error) string {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return ErrRateLimited.Code
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return string(KindInternal)
}

// KindOf returns the category of err, or KindInternal for unknown errors.
func KindOf(err error) Kind {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return KindRateLimited
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
