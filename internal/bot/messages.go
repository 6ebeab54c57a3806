package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

const (
	msgWelcome = "Welcome! Use /genlink to get a reward link, /balance to check your wallet " +
		"and /withdraw <method> <account> <amount> to cash out."
	msgHelp = "Commands:\n" +
		"/genlink - get a new reward link\n" +
		"/cooldown - time left until your next link\n" +
		"/balance - show your balance\n" +
		"/history - recent withdrawals\n" +
		"/redeem <code> - redeem a gift code\n" +
		"/withdraw <method> <account> <amount> - request a withdrawal"
	msgAdminHelp = "Admin commands:\n" +
		"/ontime, /offtime, /settime <duration>\n" +
		"/onwithdraw, /offwithdraw\n" +
		"/ongenlink, /offgenlink\n" +
		"/gengift <amount> <quantity>\n" +
		"/credit <user_id> <amount>, /debit <user_id> <amount>\n" +
		"/pending"
	msgUnknownCommand = "Unknown command. Send /help for the list of commands."
	msgInternal       = "Something went wrong, please try again later."
)

var errorMessages = map[string]string{
	"invalid_amount":      "The amount must be a positive number with at most two decimals.",
	"below_minimum":       "The amount is below the minimum withdrawal.",
	"invalid_argument":    "Invalid arguments.",
	"invalid_quantity":    "Quantity must be between 1 and 1000.",
	"token_not_found":     "This reward link is not valid.",
	"token_already_used":  "This reward link was already used.",
	"token_not_owned":     "This reward link belongs to another user.",
	"token_expired":       "This reward link has expired.",
	"code_not_found":      "Unknown gift code.",
	"code_already_used":   "This gift code was already redeemed.",
	"request_not_found":   "Withdrawal request not found.",
	"already_resolved":    "This request was already processed.",
	"feature_disabled":    "This feature is currently disabled.",
	"insufficient_funds":  "Insufficient balance.",
	"unauthorized":        "You are not allowed to do that.",
	"notification_failed": "Could not reach the admins, your balance was not charged. Please try again later.",
}

// describe turns an error into a user facing message.
func describe(err error) string {
	var rl *domainErrors.RateLimitedError
	if errors.As(err, &rl) {
		return fmt.Sprintf("Please wait %s before generating a new link.", formatDuration(rl.Remaining))
	}
	if msg, ok := errorMessages[domainErrors.Code(err)]; ok {
		return msg
	}
	return msgInternal
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

func formatWithdrawalRequest(w model.Withdrawal) string {
	return fmt.Sprintf("Withdrawal request\nID: %s\nUser: %d\nMethod: %s\nAccount: %s\nAmount: %s",
		w.ID, w.UserID, w.Method, w.Account, w.Amount)
}

func formatResolution(w model.Withdrawal) string {
	switch {
	case w.Status == model.WithdrawalStatusApproved:
		return fmt.Sprintf("Your withdrawal of %s via %s was approved.", w.Amount, w.Method)
	case w.Reason == "expired":
		return fmt.Sprintf("Your withdrawal of %s expired and was refunded to your balance.", w.Amount)
	default:
		return fmt.Sprintf("Your withdrawal of %s was rejected and refunded to your balance.", w.Amount)
	}
}

func formatHistory(items []model.Withdrawal) string {
	if len(items) == 0 {
		return "No withdrawals yet."
	}
	var b strings.Builder
	b.WriteString("Recent withdrawals:")
	for _, w := range items {
		fmt.Fprintf(&b, "\n%s  %s  %s  %s", w.CreatedAt.Format("2006-01-02"), w.Amount, w.Method, w.Status)
	}
	return b.String()
}

func formatPending(items []model.Withdrawal) string {
	if len(items) == 0 {
		return "No pending withdrawals."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pending withdrawals (%d):", len(items))
	for _, w := range items {
		fmt.Fprintf(&b, "\n%s  user %d  %s  %s %s", w.ID, w.UserID, w.Amount, w.Method, w.Account)
	}
	return b.String()
}

func formatGiftCodes(codes []model.GiftCode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d gift codes worth %s each:", len(codes), codes[0].Amount)
	for _, g := range codes {
		b.WriteString("\n")
		b.WriteString(g.Code)
	}
	return b.String()
}

// maxMessageLength stays below Telegram's 4096 character limit.
const maxMessageLength = 4000

// splitMessage breaks text on line boundaries into parts of at most limit bytes.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var (
		parts   []string
		current strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
