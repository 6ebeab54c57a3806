package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/usecase"
)

const historyLimit = 10

// Handler routes bot commands and button callbacks to the facade.
type Handler struct {
	facade       Facade
	messenger    Messenger
	signer       pkgAuth.Signer
	guard        CallbackGuard
	forceChannel string
	logger       *slog.Logger
}

// NewHandler constructs Handler. forceChannel may be empty.
func NewHandler(facade Facade, messenger Messenger, signer pkgAuth.Signer, guard CallbackGuard, forceChannel string, logger *slog.Logger) *Handler {
	if guard == nil {
		guard = NoopGuard{}
	}
	return &Handler{
		facade:       facade,
		messenger:    messenger,
		signer:       signer,
		guard:        guard,
		forceChannel: forceChannel,
		logger:       logger,
	}
}

// HandleCommand executes a slash command and replies in the same chat.
// Domain failures are reported to the user; only transport errors are returned.
func (h *Handler) HandleCommand(ctx context.Context, cmd Command) error {
	admin := h.facade.IsAdmin(cmd.UserID)
	if !admin && !h.joined(ctx, cmd) {
		return h.reply(ctx, cmd.ChatID, fmt.Sprintf("Please join %s to use this bot, then try again.", h.forceChannel))
	}

	var text string
	switch cmd.Name {
	case "start":
		text = h.start(ctx, cmd)
	case "help":
		text = msgHelp
		if admin {
			text += "\n\n" + msgAdminHelp
		}
	case "genlink":
		text = h.genlink(ctx, cmd)
	case "cooldown":
		text = h.cooldown(ctx, cmd)
	case "balance":
		text = h.balance(ctx, cmd)
	case "history":
		text = h.history(ctx, cmd)
	case "redeem":
		text = h.redeem(ctx, cmd)
	case "withdraw":
		text = h.withdraw(ctx, cmd)
	case "ontime", "offtime", "onwithdraw", "offwithdraw", "ongenlink", "offgenlink":
		text = h.toggle(ctx, cmd)
	case "settime":
		text = h.setTime(ctx, cmd)
	case "gengift":
		text = h.genGift(ctx, cmd)
	case "credit", "debit":
		text = h.adjust(ctx, cmd)
	case "pending":
		text = h.pending(ctx, cmd)
	default:
		text = msgUnknownCommand
	}
	return h.reply(ctx, cmd.ChatID, text)
}

// HandleCallback resolves a withdrawal from an admin's approve/reject button.
// Presses are deduplicated per request, so a double-click or a second admin
// pressing the other button reaches the facade once.
func (h *Handler) HandleCallback(ctx context.Context, cb Callback) error {
	payload, err := h.signer.Verify(cb.Data)
	if err != nil {
		h.logger.Warn("rejected callback with invalid signature", slog.Int64("user_id", cb.UserID))
		return h.messenger.AnswerCallback(ctx, cb.ID, "Invalid action.")
	}
	action, id, err := parseWithdrawalPayload(payload)
	if err != nil {
		return h.messenger.AnswerCallback(ctx, cb.ID, "Invalid action.")
	}

	key := withdrawalGuardKey(id)
	fresh, err := h.guard.Acquire(ctx, key)
	if err != nil {
		h.logger.Warn("callback guard unavailable", slog.String("error", err.Error()))
		fresh = true
	}
	if !fresh {
		return h.messenger.AnswerCallback(ctx, cb.ID, "Already handled.")
	}

	w, err := h.facade.ResolveWithdrawal(ctx, cb.UserID, id, action)
	if err != nil {
		// Only a state conflict is final; anything else may succeed on the next press.
		if domainErrors.KindOf(err) != domainErrors.KindState {
			if rerr := h.guard.Release(context.WithoutCancel(ctx), key); rerr != nil {
				h.logger.Warn("callback guard release failed", slog.String("key", key), slog.String("error", rerr.Error()))
			}
		}
		h.logFailure("resolve withdrawal", cb.UserID, err)
		return h.messenger.AnswerCallback(ctx, cb.ID, describe(err))
	}

	status := "Approved"
	if w.Status == model.WithdrawalStatusRejected {
		status = "Rejected"
	}
	if err := h.messenger.AnswerCallback(ctx, cb.ID, status); err != nil {
		return err
	}
	text := fmt.Sprintf("%s\n\n%s by %d", formatWithdrawalRequest(*w), status, cb.UserID)
	return h.messenger.Edit(ctx, cb.ChatID, cb.MessageID, text)
}

func (h *Handler) joined(ctx context.Context, cmd Command) bool {
	if h.forceChannel == "" {
		return true
	}
	ok, err := h.messenger.IsChatMember(ctx, h.forceChannel, cmd.UserID)
	if err != nil {
		h.logger.Warn("membership check failed", slog.String("channel", h.forceChannel), slog.String("error", err.Error()))
		return true
	}
	return ok
}

func (h *Handler) start(ctx context.Context, cmd Command) string {
	if _, err := h.facade.Register(ctx, cmd.UserID); err != nil {
		h.logFailure("register user", cmd.UserID, err)
		return describe(err)
	}
	if len(cmd.Args) == 0 || !strings.HasPrefix(cmd.Args[0], usecase.DeepLinkPrefix) {
		return msgWelcome
	}

	code := strings.TrimPrefix(cmd.Args[0], usecase.DeepLinkPrefix)
	balance, err := h.facade.RedeemToken(ctx, cmd.UserID, code)
	if err != nil {
		h.logFailure("redeem token", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Reward credited! Your balance is %s.", balance)
}

func (h *Handler) genlink(ctx context.Context, cmd Command) string {
	issued, err := h.facade.IssueToken(ctx, cmd.UserID)
	if err != nil {
		h.logFailure("issue token", cmd.UserID, err)
		return describe(err)
	}
	return "Open this link to collect your reward:\n" + issued.Link
}

func (h *Handler) cooldown(ctx context.Context, cmd Command) string {
	remaining, err := h.facade.CooldownRemaining(ctx, cmd.UserID)
	if err != nil {
		h.logFailure("cooldown", cmd.UserID, err)
		return describe(err)
	}
	if remaining <= 0 {
		return "You can generate a new link now."
	}
	return fmt.Sprintf("Your next link will be available in %s.", formatDuration(remaining))
}

func (h *Handler) balance(ctx context.Context, cmd Command) string {
	balance, err := h.facade.Balance(ctx, cmd.UserID)
	if err != nil {
		h.logFailure("balance", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Your balance: %s", balance)
}

func (h *Handler) history(ctx context.Context, cmd Command) string {
	items, err := h.facade.Withdrawals(ctx, cmd.UserID)
	if err != nil {
		h.logFailure("withdrawal history", cmd.UserID, err)
		return describe(err)
	}
	if len(items) > historyLimit {
		items = items[:historyLimit]
	}
	return formatHistory(items)
}

func (h *Handler) redeem(ctx context.Context, cmd Command) string {
	if len(cmd.Args) != 1 {
		return "Usage: /redeem <code>"
	}
	gift, balance, err := h.facade.RedeemGiftCode(ctx, cmd.UserID, cmd.Args[0])
	if err != nil {
		h.logFailure("redeem gift code", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Gift code redeemed: +%s. Your balance is %s.", gift.Amount, balance)
}

func (h *Handler) withdraw(ctx context.Context, cmd Command) string {
	if len(cmd.Args) != 3 {
		return "Usage: /withdraw <method> <account> <amount>"
	}
	amount, err := model.ParseAmount(cmd.Args[2])
	if err != nil {
		return describe(domainErrors.ErrInvalidAmount)
	}
	w, balance, err := h.facade.RequestWithdrawal(ctx, cmd.UserID, cmd.Args[0], cmd.Args[1], amount)
	if err != nil {
		h.logFailure("request withdrawal", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Withdrawal of %s requested (ID %s). It is pending admin approval. Remaining balance: %s.",
		w.Amount, w.ID, balance)
}

var toggles = map[string]struct {
	key     string
	enabled bool
}{
	"ontime":      {model.SettingTimeGap, true},
	"offtime":     {model.SettingTimeGap, false},
	"onwithdraw":  {model.SettingWithdraw, true},
	"offwithdraw": {model.SettingWithdraw, false},
	"ongenlink":   {model.SettingGenLink, true},
	"offgenlink":  {model.SettingGenLink, false},
}

func (h *Handler) toggle(ctx context.Context, cmd Command) string {
	t := toggles[cmd.Name]
	s, err := h.facade.SetFeature(ctx, cmd.UserID, t.key, t.enabled)
	if err != nil {
		h.logFailure("toggle setting", cmd.UserID, err)
		return describe(err)
	}
	state := "disabled"
	if s.Enabled {
		state = "enabled"
	}
	return fmt.Sprintf("%s is now %s.", s.Key, state)
}

func (h *Handler) setTime(ctx context.Context, cmd Command) string {
	if len(cmd.Args) != 1 {
		return "Usage: /settime <duration>, for example /settime 90m"
	}
	d, err := parseCooldown(cmd.Args[0])
	if err != nil {
		return describe(domainErrors.ErrInvalidArgument)
	}
	if _, err := h.facade.SetCooldown(ctx, cmd.UserID, d); err != nil {
		h.logFailure("set cooldown", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Cooldown set to %s.", formatDuration(d))
}

func (h *Handler) genGift(ctx context.Context, cmd Command) string {
	if len(cmd.Args) != 2 {
		return "Usage: /gengift <amount> <quantity>"
	}
	amount, err := model.ParseAmount(cmd.Args[0])
	if err != nil {
		return describe(domainErrors.ErrInvalidAmount)
	}
	quantity, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return describe(domainErrors.ErrInvalidQuantity)
	}
	codes, err := h.facade.GenerateGiftCodes(ctx, cmd.UserID, amount, quantity)
	if err != nil {
		h.logFailure("generate gift codes", cmd.UserID, err)
		return describe(err)
	}
	return formatGiftCodes(codes)
}

func (h *Handler) adjust(ctx context.Context, cmd Command) string {
	if len(cmd.Args) != 2 {
		return fmt.Sprintf("Usage: /%s <user_id> <amount>", cmd.Name)
	}
	target, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return describe(domainErrors.ErrInvalidArgument)
	}
	amount, err := model.ParseAmount(cmd.Args[1])
	if err != nil || !amount.Positive() {
		return describe(domainErrors.ErrInvalidAmount)
	}
	delta := amount
	if cmd.Name == "debit" {
		delta = -amount
	}
	balance, err := h.facade.AdjustBalance(ctx, cmd.UserID, target, delta)
	if err != nil {
		h.logFailure("adjust balance", cmd.UserID, err)
		return describe(err)
	}
	return fmt.Sprintf("Balance of user %d is now %s.", target, balance)
}

func (h *Handler) pending(ctx context.Context, cmd Command) string {
	items, err := h.facade.PendingWithdrawals(ctx, cmd.UserID, 0)
	if err != nil {
		h.logFailure("list pending withdrawals", cmd.UserID, err)
		return describe(err)
	}
	return formatPending(items)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageLength) {
		if _, err := h.messenger.Send(ctx, chatID, part); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) logFailure(op string, userID int64, err error) {
	kind := domainErrors.KindOf(err)
	if kind == domainErrors.KindInternal || kind == domainErrors.KindExternal {
		h.logger.Error(op+" failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return
	}
	h.logger.Debug(op+" rejected", slog.Int64("user_id", userID), slog.String("code", domainErrors.Code(err)))
}

// parseCooldown accepts Go durations ("90m") or a plain number of minutes.
func parseCooldown(raw string) (time.Duration, error) {
	if minutes, err := strconv.Atoi(raw); err == nil {
		if minutes <= 0 {
			return 0, errors.New("cooldown must be positive")
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("cooldown must be positive")
	}
	return d, nil
}
