package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/adapter/telegram"
	"github.com/polkiloo/earnbot/internal/bot"
	"github.com/polkiloo/earnbot/internal/config"
	"github.com/polkiloo/earnbot/internal/server/http/handlers"
	"github.com/polkiloo/earnbot/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewEarnFacade,
		func(f *EarnFacade) bot.Facade { return f },
		func(f *EarnFacade) handlers.ServiceFacade { return f },
		newHTTPServer,
		newExpiryProcessor,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *EarnFacade
	Config *config.Config
	Logger *slog.Logger
}

func newExpiryProcessor(p workerParams) *worker.ExpiryProcessor {
	return worker.NewExpiryProcessor(
		p.Facade,
		p.Config.ExpiryPollInterval,
		p.Config.ExpiryBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *telegram.Poller
	Worker     *worker.ExpiryProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting earnbot", slog.String("addr", p.Server.Addr))
			runCtx := context.WithoutCancel(ctx)
			if p.Config.PendingTTL > 0 {
				p.Worker.Start(runCtx)
			}
			p.Poller.Start(runCtx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Poller.Stop()
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("earnbot stopped")
			return nil
		},
	})
}
