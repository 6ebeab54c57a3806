package bot

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/config"
	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/usecase"
)

// Module provides the bot handler and the withdrawal notifier.
var Module = fx.Provide(
	newHandler,
	newNotifier,
)

type handlerParams struct {
	fx.In

	Facade    Facade
	Messenger Messenger
	Signer    pkgAuth.Signer
	Guard     CallbackGuard
	Config    *config.Config
	Logger    *slog.Logger
}

func newHandler(p handlerParams) *Handler {
	return NewHandler(p.Facade, p.Messenger, p.Signer, p.Guard, p.Config.ForceChannel, p.Logger)
}

type notifierParams struct {
	fx.In

	Messenger Messenger
	Signer    pkgAuth.Signer
	Config    *config.Config
}

func newNotifier(p notifierParams) usecase.WithdrawalNotifier {
	return NewNotifier(p.Messenger, p.Signer, p.Config.AdminChatID)
}
