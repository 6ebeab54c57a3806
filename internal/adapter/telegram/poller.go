package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polkiloo/earnbot/internal/bot"
	"github.com/polkiloo/earnbot/internal/observability"
)

const longPollTimeout = 60

// UpdateHandler processes decoded bot events.
type UpdateHandler interface {
	HandleCommand(ctx context.Context, cmd bot.Command) error
	HandleCallback(ctx context.Context, cb bot.Callback) error
}

// UpdateSource delivers raw Telegram updates.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller long-polls Telegram and dispatches every update to the handler on a
// bounded number of goroutines.
type Poller struct {
	source  UpdateSource
	handler UpdateHandler
	workers int
	logger  *slog.Logger

	sem    chan struct{}
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPoller constructs Poller handling at most workers updates at once.
func NewPoller(source UpdateSource, handler UpdateHandler, workers int, logger *slog.Logger) *Poller {
	if workers <= 0 {
		workers = 1
	}
	return &Poller{
		source:  source,
		handler: handler,
		workers: workers,
		logger:  logger,
		sem:     make(chan struct{}, workers),
	}
}

// Start begins receiving updates in the background.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = longPollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := p.source.GetUpdatesChan(cfg)

	p.wg.Add(1)
	go p.receive(runCtx, updates)
}

// Stop stops polling and waits for in-flight updates.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.source.StopReceivingUpdates()
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) receive(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				return
			case p.sem <- struct{}{}:
			}
			p.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer p.wg.Done()
				defer func() { <-p.sem }()
				p.dispatch(ctx, update)
			}(update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("update handler panicked",
				slog.Int("update_id", update.UpdateID),
				slog.String("panic", fmt.Sprint(r)),
			)
			observability.IncrementBotUpdate("panic")
		}
	}()

	cmd, cb, kind := decode(update)
	var err error
	switch kind {
	case updateCommand:
		err = p.handler.HandleCommand(ctx, cmd)
	case updateCallback:
		err = p.handler.HandleCallback(ctx, cb)
	default:
		observability.IncrementBotUpdate("ignored")
		return
	}
	if err != nil {
		p.logger.Warn("update handling failed",
			slog.Int("update_id", update.UpdateID),
			slog.String("error", err.Error()),
		)
		observability.IncrementBotUpdate("error")
		return
	}
	observability.IncrementBotUpdate(string(kind))
}

type updateKind string

const (
	updateIgnored  updateKind = ""
	updateCommand  updateKind = "command"
	updateCallback updateKind = "callback"
)

// decode turns a raw update into a command or a callback.
func decode(update tgbotapi.Update) (bot.Command, bot.Callback, updateKind) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil {
			return bot.Command{}, bot.Callback{}, updateIgnored
		}
		cb := bot.Callback{ID: q.ID, UserID: q.From.ID, Data: q.Data}
		if q.Message != nil {
			cb.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				cb.ChatID = q.Message.Chat.ID
			}
		}
		return bot.Command{}, cb, updateCallback
	case update.Message != nil && update.Message.IsCommand():
		m := update.Message
		if m.From == nil || m.Chat == nil {
			return bot.Command{}, bot.Callback{}, updateIgnored
		}
		cmd := bot.Command{
			ChatID: m.Chat.ID,
			UserID: m.From.ID,
			Name:   strings.ToLower(m.Command()),
			Args:   strings.Fields(m.CommandArguments()),
		}
		return cmd, bot.Callback{}, updateCommand
	default:
		return bot.Command{}, bot.Callback{}, updateIgnored
	}
}
