package dedup

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/bot"
	"github.com/polkiloo/earnbot/internal/config"
)

// Module provides the callback guard. Without REDIS_URL every callback is
// accepted.
var Module = fx.Provide(newGuard)

type guardParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newGuard(p guardParams) (bot.CallbackGuard, error) {
	if p.Config.RedisURL == "" {
		return bot.NoopGuard{}, nil
	}
	client, err := newRedisClient(p.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				p.Logger.Warn("redis unavailable, duplicate callbacks will not be filtered", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisGuard(client, DefaultTTL), nil
}
