package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/config"
)

// Module provides signing and key verification primitives via fx.
var Module = fx.Options(
	fx.Provide(newKeyHasher),
	fx.Provide(newSigner),
	fx.Provide(newKeyVerifier),
)

func newKeyHasher() KeyHasher {
	return NewBcryptHasher(0)
}

type configParams struct {
	fx.In

	Config *config.Config
}

func newSigner(p configParams) Signer {
	return NewHMACSigner(p.Config.CallbackSecret)
}

type verifierParams struct {
	fx.In

	Config *config.Config
	Hasher KeyHasher
}

func newKeyVerifier(p verifierParams) *KeyVerifier {
	return NewKeyVerifier(p.Hasher, p.Config.AdminAPIKeyHash)
}
