package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polkiloo/earnbot/internal/bot"
)

// Client implements bot.Messenger on top of the Telegram Bot API.
type Client struct {
	api *tgbotapi.BotAPI
}

// NewClient authorizes token against endpoint. An empty endpoint selects the
// public Bot API.
func NewClient(token, endpoint string) (*Client, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	return &Client{api: api}, nil
}

// Username returns the bot's handle without the leading @.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// API exposes the underlying client for update polling.
func (c *Client) API() *tgbotapi.BotAPI {
	return c.api
}

// Send posts a text message, attaching an inline keyboard when rows are given.
func (c *Client) Send(_ context.Context, chatID int64, text string, keyboard ...[]bot.Button) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a previously sent message and drops its keyboard.
func (c *Client) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	if _, err := c.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges an inline button press.
func (c *Client) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// IsChatMember reports whether userID belongs to channel. channel is either
// a public @username or a numeric chat id.
func (c *Client) IsChatMember(_ context.Context, channel string, userID int64) (bool, error) {
	cfg := tgbotapi.GetChatMemberConfig{ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID}}
	if id, ok := parseChatID(channel); ok {
		cfg.ChatID = id
	} else {
		cfg.SuperGroupUsername = "@" + strings.TrimPrefix(channel, "@")
	}

	member, err := c.api.GetChatMember(cfg)
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	default:
		return false, nil
	}
}

func inlineKeyboard(rows [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		markup = append(markup, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}

func parseChatID(channel string) (int64, bool) {
	id, err := strconv.ParseInt(channel, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
