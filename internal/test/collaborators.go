package test

import (
	"context"
	"sync"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// ShortenerStub shortens links via function override.
type ShortenerStub struct {
	ShortenFn func(context.Context, string) (string, error)
}

// Shorten returns the override result or a predictable short link.
func (s ShortenerStub) Shorten(ctx context.Context, url string) (string, error) {
	if s.ShortenFn != nil {
		return s.ShortenFn(ctx, url)
	}
	return "https://short.test/x", nil
}

// IdentityStub reports a fixed bot username.
type IdentityStub string

// Username returns the stored name.
func (s IdentityStub) Username() string { return string(s) }

// NotifierStub records withdrawal notifications.
type NotifierStub struct {
	mu         sync.Mutex
	RequestErr error
	ResolveErr error
	RequestFn  func(context.Context, model.Withdrawal) error
	Requested  []model.Withdrawal
	Resolved   []model.Withdrawal
}

// WithdrawalRequested records w and returns RequestErr, or the result of
// RequestFn when it is set.
func (n *NotifierStub) WithdrawalRequested(ctx context.Context, w model.Withdrawal) error {
	n.mu.Lock()
	n.Requested = append(n.Requested, w)
	fn, err := n.RequestFn, n.RequestErr
	n.mu.Unlock()
	if fn != nil {
		return fn(ctx, w)
	}
	return err
}

// WithdrawalResolved records w and returns ResolveErr.
func (n *NotifierStub) WithdrawalResolved(ctx context.Context, w model.Withdrawal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Resolved = append(n.Resolved, w)
	return n.ResolveErr
}

// ResolvedCount returns the number of resolution notifications.
func (n *NotifierStub) ResolvedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Resolved)
}
