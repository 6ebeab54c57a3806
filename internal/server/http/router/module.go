package router

import (
	"go.uber.org/fx"

	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	func(v *pkgAuth.KeyVerifier) middleware.KeyVerifier { return v },
	Setup,
)
