package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHMACSigner_SignAndVerify(t *testing.T) {
	signer := NewHMACSigner("secret")
	payload := "wd:a:3f1c7c1e-0d0b-4b53-9d59-1e2a9b0c4d5e"

	data := signer.Sign(payload)
	if !strings.HasPrefix(data, payload+":") {
		t.Fatalf("unexpected signed data %q", data)
	}
	if len(data) > 64 {
		t.Fatalf("signed data exceeds 64 bytes: %d", len(data))
	}

	got, err := signer.Verify(data)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != payload {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestHMACSigner_RejectsTampering(t *testing.T) {
	signer := NewHMACSigner("secret")
	data := signer.Sign("wd:a:id")

	cases := []string{
		"",
		"no-signature",
		"wd:a:id:",
		strings.Replace(data, "wd:a:", "wd:r:", 1),
		data + "x",
		NewHMACSigner("other").Sign("wd:a:id"),
	}
	for _, c := range cases {
		if _, err := signer.Verify(c); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected invalid signature for %q, got %v", c, err)
		}
	}
}
