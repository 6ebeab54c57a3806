package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes configuration loader for fx graphs.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(warnUnsafeDefaults),
)

func warnUnsafeDefaults(cfg *Config, logger *slog.Logger) {
	if cfg.CallbackSecret == defaultCallbackSecret {
		logger.Warn("CALLBACK_SECRET is not set, withdrawal buttons are signed with the built-in secret")
	}
	if len(cfg.AdminIDs) == 0 {
		logger.Warn("ADMIN_IDS is empty, admin commands are disabled")
	}
	if cfg.AdminChatID == 0 {
		logger.Warn("ADMIN_CHAT_ID is not set, withdrawal requests cannot be delivered")
	}
}
