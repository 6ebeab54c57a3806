package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/adapter/dedup"
	"github.com/polkiloo/earnbot/internal/adapter/shortener"
	"github.com/polkiloo/earnbot/internal/adapter/telegram"
	"github.com/polkiloo/earnbot/internal/app"
	"github.com/polkiloo/earnbot/internal/bot"
	"github.com/polkiloo/earnbot/internal/config"
	"github.com/polkiloo/earnbot/internal/logger"
	"github.com/polkiloo/earnbot/internal/observability"
	"github.com/polkiloo/earnbot/internal/pkg/auth"
	"github.com/polkiloo/earnbot/internal/server/http/router"
	"github.com/polkiloo/earnbot/internal/storage/postgres"
	"github.com/polkiloo/earnbot/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		fx.Invoke(observability.Init),
		auth.Module,
		postgres.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		shortener.Module,
		dedup.Module,
		telegram.Module,
		usecase.Module,
		bot.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
