package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/config"
	"github.com/polkiloo/earnbot/internal/domain/repository"
)

// Module wires PostgreSQL storage and the ledger repositories. The pool is
// pinged on start so a bad DSN fails the application early.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.WalletRepository { return s.Wallets() },
		func(s *Storage) repository.TokenRepository { return s.Tokens() },
		func(s *Storage) repository.GiftCodeRepository { return s.GiftCodes() },
		func(s *Storage) repository.WithdrawalRepository { return s.Withdrawals() },
		func(s *Storage) repository.SettingRepository { return s.Settings() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			if storage.logger != nil {
				storage.logger.Info("database ready")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
