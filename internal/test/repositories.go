package test

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/domain/repository"
)

// MemoryStore is an in-memory implementation of every repository. A single
// mutex makes each method behave like one conditional SQL statement.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[int64]*model.User
	entries     []model.LedgerEntry
	tokens      map[string]*model.RewardToken
	gifts       map[string]*model.GiftCode
	withdrawals map[uuid.UUID]*model.Withdrawal
	settings    map[string]*model.Setting

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int64]*model.User),
		tokens:      make(map[string]*model.RewardToken),
		gifts:       make(map[string]*model.GiftCode),
		withdrawals: make(map[uuid.UUID]*model.Withdrawal),
		settings:    make(map[string]*model.Setting),
	}
}

var _ repository.Factory = (*MemoryStore)(nil)

func (s *MemoryStore) Wallets() repository.WalletRepository         { return memoryWallets{s} }
func (s *MemoryStore) Tokens() repository.TokenRepository           { return memoryTokens{s} }
func (s *MemoryStore) GiftCodes() repository.GiftCodeRepository     { return memoryGiftCodes{s} }
func (s *MemoryStore) Withdrawals() repository.WithdrawalRepository { return memoryWithdrawals{s} }
func (s *MemoryStore) Settings() repository.SettingRepository       { return memorySettings{s} }

// SetBalance creates or overwrites a user's balance, journaling the difference.
func (s *MemoryStore) SetBalance(userID int64, balance model.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensure(userID)
	s.journal(userID, balance-u.Balance, model.EntryManual, "seed")
	u.Balance = balance
}

// PutGiftCode stores a gift code directly.
func (s *MemoryStore) PutGiftCode(g model.GiftCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := g
	s.gifts[g.Code] = &c
}

// PutToken stores a reward token directly.
func (s *MemoryStore) PutToken(t model.RewardToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(t.OwnerID)
	c := t
	s.tokens[t.Code] = &c
}

// Balance returns the stored balance of a user.
func (s *MemoryStore) Balance(userID int64) model.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.Balance
	}
	return 0
}

// JournalSum returns the sum of ledger deltas of a user.
func (s *MemoryStore) JournalSum(userID int64) model.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum model.Amount
	for _, e := range s.entries {
		if e.UserID == userID {
			sum += e.Delta
		}
	}
	return sum
}

// Entries returns a copy of the ledger journal.
func (s *MemoryStore) Entries() []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LedgerEntry(nil), s.entries...)
}

func (s *MemoryStore) ensure(userID int64) *model.User {
	u, ok := s.users[userID]
	if !ok {
		u = &model.User{ID: userID, CreatedAt: time.Now()}
		s.users[userID] = u
	}
	return u
}

func (s *MemoryStore) journal(userID int64, delta model.Amount, kind model.EntryKind, ref string) {
	s.entries = append(s.entries, model.LedgerEntry{
		ID:        int64(len(s.entries) + 1),
		UserID:    userID,
		Delta:     delta,
		Kind:      kind,
		Ref:       ref,
		CreatedAt: time.Now(),
	})
}

func (s *MemoryStore) credit(userID int64, amount model.Amount, kind model.EntryKind, ref string) model.Amount {
	u := s.ensure(userID)
	u.Balance += amount
	s.journal(userID, amount, kind, ref)
	return u.Balance
}

func (s *MemoryStore) debit(userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	u, ok := s.users[userID]
	if !ok || u.Balance < amount {
		return 0, domainErrors.ErrInsufficientFunds
	}
	u.Balance -= amount
	s.journal(userID, -amount, kind, ref)
	return u.Balance, nil
}

type memoryWallets struct{ s *MemoryStore }

func (r memoryWallets) Ensure(ctx context.Context, userID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u := *r.s.ensure(userID)
	return &u, nil
}

func (r memoryWallets) Get(ctx context.Context, userID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memoryWallets) Credit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return r.s.credit(userID, amount, kind, ref), nil
}

func (r memoryWallets) Debit(ctx context.Context, userID int64, amount model.Amount, kind model.EntryKind, ref string) (model.Amount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return r.s.debit(userID, amount, kind, ref)
}

type memoryTokens struct{ s *MemoryStore }

func (r memoryTokens) Issue(ctx context.Context, token model.RewardToken, cooldown time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	u := r.s.ensure(token.OwnerID)
	if remaining := model.CooldownRemaining(u.LastIssuedAt, token.CreatedAt, cooldown); remaining > 0 {
		return &domainErrors.RateLimitedError{Remaining: remaining}
	}
	if _, exists := r.s.tokens[token.Code]; exists {
		return domainErrors.ErrAlreadyExists
	}
	at := token.CreatedAt
	u.LastIssuedAt = &at
	c := token
	c.Used = false
	r.s.tokens[token.Code] = &c
	return nil
}

func (r memoryTokens) Redeem(ctx context.Context, code string, claimantID int64, reward model.Amount, ttl time.Duration, now time.Time) (*model.RewardToken, model.Amount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	t, ok := r.s.tokens[code]
	switch {
	case !ok:
		return nil, 0, domainErrors.ErrTokenNotFound
	case t.OwnerID != claimantID:
		return nil, 0, domainErrors.ErrTokenNotOwned
	case t.Used:
		return nil, 0, domainErrors.ErrTokenAlreadyUsed
	case t.Expired(ttl, now):
		return nil, 0, domainErrors.ErrTokenExpired
	}
	t.Used = true
	usedAt := now
	t.UsedAt = &usedAt
	balance := r.s.credit(claimantID, reward, model.EntryTokenReward, code)
	c := *t
	return &c, balance, nil
}

func (r memoryTokens) Get(ctx context.Context, code string) (*model.RewardToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	t, ok := r.s.tokens[code]
	if !ok {
		return nil, domainErrors.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

type memoryGiftCodes struct{ s *MemoryStore }

func (r memoryGiftCodes) CreateBatch(ctx context.Context, codes []model.GiftCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, g := range codes {
		if _, exists := r.s.gifts[g.Code]; exists {
			return domainErrors.ErrAlreadyExists
		}
	}
	for _, g := range codes {
		c := g
		r.s.gifts[g.Code] = &c
	}
	return nil
}

func (r memoryGiftCodes) Redeem(ctx context.Context, code string, userID int64, now time.Time) (*model.GiftCode, model.Amount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	g, ok := r.s.gifts[code]
	if !ok {
		return nil, 0, domainErrors.ErrCodeNotFound
	}
	if g.Used {
		return nil, 0, domainErrors.ErrCodeAlreadyUsed
	}
	g.Used = true
	by, at := userID, now
	g.UsedBy, g.UsedAt = &by, &at
	balance := r.s.credit(userID, g.Amount, model.EntryGiftCode, code)
	c := *g
	return &c, balance, nil
}

func (r memoryGiftCodes) Get(ctx context.Context, code string) (*model.GiftCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	g, ok := r.s.gifts[code]
	if !ok {
		return nil, domainErrors.ErrCodeNotFound
	}
	c := *g
	return &c, nil
}

type memoryWithdrawals struct{ s *MemoryStore }

func (r memoryWithdrawals) Create(ctx context.Context, w model.Withdrawal) (model.Amount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	balance, err := r.s.debit(w.UserID, w.Amount, model.EntryWithdrawalHold, w.ID.String())
	if err != nil {
		return 0, err
	}
	c := w
	c.Status = model.WithdrawalStatusPending
	r.s.withdrawals[w.ID] = &c
	return balance, nil
}

func (r memoryWithdrawals) Resolve(ctx context.Context, res model.Resolution) (*model.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	w, ok := r.s.withdrawals[res.ID]
	if !ok {
		return nil, domainErrors.ErrRequestNotFound
	}
	if !w.Status.CanTransition(res.Target) {
		return nil, domainErrors.ErrAlreadyResolved
	}
	at := res.At
	w.Status, w.ResolvedAt, w.Reason = res.Target, &at, res.Reason
	if res.ActorID != nil {
		actor := *res.ActorID
		w.ResolvedBy = &actor
	}
	if res.Target == model.WithdrawalStatusRejected {
		r.s.credit(w.UserID, w.Amount, model.EntryWithdrawalRefund, w.ID.String())
	}
	c := *w
	return &c, nil
}

func (r memoryWithdrawals) Get(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	w, ok := r.s.withdrawals[id]
	if !ok {
		return nil, domainErrors.ErrRequestNotFound
	}
	c := *w
	return &c, nil
}

func (r memoryWithdrawals) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Withdrawal, error) {
	items, err := r.filter(func(w *model.Withdrawal) bool { return w.UserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return capped(items, limit), nil
}

func (r memoryWithdrawals) ListPending(ctx context.Context, limit int) ([]model.Withdrawal, error) {
	items, err := r.filter(func(w *model.Withdrawal) bool { return w.Status == model.WithdrawalStatusPending })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return capped(items, limit), nil
}

func (r memoryWithdrawals) ListStale(ctx context.Context, before time.Time, limit int) ([]model.Withdrawal, error) {
	items, err := r.filter(func(w *model.Withdrawal) bool {
		return w.Status == model.WithdrawalStatusPending && w.CreatedAt.Before(before)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return capped(items, limit), nil
}

func (r memoryWithdrawals) filter(keep func(*model.Withdrawal) bool) ([]model.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var items []model.Withdrawal
	for _, w := range r.s.withdrawals {
		if keep(w) {
			items = append(items, *w)
		}
	}
	return items, nil
}

func capped(items []model.Withdrawal, limit int) []model.Withdrawal {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

type memorySettings struct{ s *MemoryStore }

func (r memorySettings) Seed(ctx context.Context, def model.Setting) (*model.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.seed(def), nil
}

func (r memorySettings) SetEnabled(ctx context.Context, def model.Setting, enabled bool) (*model.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	st := r.stored(def)
	st.Enabled = enabled
	st.UpdatedAt = time.Now()
	return copySetting(st), nil
}

func (r memorySettings) SetParam(ctx context.Context, def model.Setting, name, value string) (*model.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	st := r.stored(def)
	st.Params[name] = value
	st.UpdatedAt = time.Now()
	return copySetting(st), nil
}

func (r memorySettings) Update(ctx context.Context, def model.Setting, enabled *bool, params map[string]string) (*model.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	st := r.stored(def)
	if enabled != nil {
		st.Enabled = *enabled
	}
	maps.Copy(st.Params, params)
	st.UpdatedAt = time.Now()
	return copySetting(st), nil
}

func (r memorySettings) seed(def model.Setting) *model.Setting {
	return copySetting(r.stored(def))
}

func (r memorySettings) stored(def model.Setting) *model.Setting {
	st, ok := r.s.settings[def.Key]
	if !ok {
		st = copySetting(&def)
		st.UpdatedAt = time.Now()
		r.s.settings[def.Key] = st
	}
	return st
}

func copySetting(s *model.Setting) *model.Setting {
	c := *s
	c.Params = maps.Clone(s.Params)
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	return &c
}
