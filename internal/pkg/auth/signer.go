package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidSignature is returned for tampered or malformed signed data.
var ErrInvalidSignature = errors.New("invalid signature")

// signatureBytes keeps signed callback data within Telegram's 64 byte limit.
const signatureBytes = 12

// Signer protects short payloads such as inline button data from forgery.
type Signer interface {
	Sign(payload string) string
	Verify(data string) (string, error)
}

// HMACSigner appends a truncated HMAC-SHA256 signature to payloads.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner builds HMACSigner with the provided secret.
func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

// Sign returns "<payload>:<signature>".
func (s *HMACSigner) Sign(payload string) string {
	return payload + ":" + s.sign(payload)
}

// Verify checks the signature of data produced by Sign and returns the payload.
func (s *HMACSigner) Verify(data string) (string, error) {
	idx := strings.LastIndexByte(data, ':')
	if idx <= 0 || idx == len(data)-1 {
		return "", ErrInvalidSignature
	}
	payload, sig := data[:idx], data[idx+1:]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(sig)) {
		return "", ErrInvalidSignature
	}
	return payload, nil
}

func (s *HMACSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:signatureBytes])
}
