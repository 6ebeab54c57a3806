package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
)

const (
	maxMethodLength  = 32
	maxAccountLength = 128
)

// NormalizeCode trims and upper-cases a token or gift code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code is well formed: 1 to 64
// upper-case letters, digits, dashes or underscores.
func ValidCode(code string) bool {
	if len(code) == 0 || len(code) > 64 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ValidateDestination checks the payout method and account of a withdrawal
// and returns them trimmed.
func ValidateDestination(method, account string) (string, string, error) {
	method = strings.TrimSpace(method)
	account = strings.TrimSpace(account)
	if !printable(method, maxMethodLength) || !printable(account, maxAccountLength) {
		return "", "", domainErrors.ErrInvalidArgument
	}
	return method, account, nil
}

func printable(s string, limit int) bool {
	if s == "" || utf8.RuneCountInString(s) > limit {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
