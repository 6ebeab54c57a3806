package shortener

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/earnbot/internal/config"
	"github.com/polkiloo/earnbot/internal/usecase"
)

// Module exposes the link shortener to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (usecase.Shortener, error) {
	if p.Config.ShortenerURL == "" {
		return Passthrough{}, nil
	}
	return NewHTTPClient(p.Config.ShortenerURL, p.Config.ShortenerAPIKey, p.Config.ShortenerTimeout, p.Logger)
}
