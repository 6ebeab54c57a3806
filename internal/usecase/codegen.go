package usecase

import (
	"crypto/rand"
	"math/big"
)

const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 10
	maxCodeAttempts = 3
)

// CodeGenerator produces random codes for reward tokens and gift codes.
type CodeGenerator func() (string, error)

// NewCodeGenerator returns the crypto/rand backed generator.
func NewCodeGenerator() CodeGenerator {
	return RandomCode
}

// RandomCode returns codeLength characters drawn uniformly from codeAlphabet.
func RandomCode() (string, error) {
	buf := make([]byte, codeLength)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
