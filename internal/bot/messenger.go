package bot

import "context"

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Messenger is the messaging transport used by the bot.
type Messenger interface {
	// Send posts text to chatID with optional rows of inline buttons and
	// returns the id of the sent message.
	Send(ctx context.Context, chatID int64, text string, keyboard ...[]Button) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	IsChatMember(ctx context.Context, channel string, userID int64) (bool, error)
}

// Command is a slash command sent by a user.
type Command struct {
	ChatID int64
	UserID int64
	Name   string
	Args   []string
}

// Callback is an inline button press.
type Callback struct {
	ID        string
	ChatID    int64
	UserID    int64
	MessageID int
	Data      string
}

// CallbackGuard drops repeated presses of the same withdrawal button while
// the first one is handled.
type CallbackGuard interface {
	// Acquire returns false when key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release frees key so a later press is handled again.
	Release(ctx context.Context, key string) error
}

// NoopGuard accepts every callback.
type NoopGuard struct{}

// Acquire always returns true.
func (NoopGuard) Acquire(context.Context, string) (bool, error) { return true, nil }

// Release does nothing.
func (NoopGuard) Release(context.Context, string) error { return nil }
