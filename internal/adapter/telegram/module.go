package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/bot"
	"github.com/polkiloo/earnbot/internal/config"
	"github.com/polkiloo/earnbot/internal/usecase"
)

// Module wires the Telegram client and update poller.
var Module = fx.Provide(
	newClient,
	func(c *Client) bot.Messenger { return c },
	func(c *Client) usecase.BotIdentity { return c },
	newPoller,
)

func newClient(cfg *config.Config) (*Client, error) {
	return NewClient(cfg.BotToken, cfg.BotAPIEndpoint)
}

type pollerParams struct {
	fx.In

	Client  *Client
	Handler *bot.Handler
	Config  *config.Config
	Logger  *slog.Logger
}

func newPoller(p pollerParams) *Poller {
	return NewPoller(p.Client.API(), p.Handler, p.Config.BotWorkers, p.Logger)
}
