package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	LogLevel    string

	BotToken       string
	BotUsername    string
	BotAPIEndpoint string
	BotWorkers     int
	AdminIDs       []int64
	AdminChatID    int64
	ForceChannel   string

	RewardAmount    model.Amount
	MinWithdraw     model.Amount
	Cooldown        time.Duration
	CooldownEnabled bool
	WithdrawEnabled bool
	TokenTTL        time.Duration

	PendingTTL         time.Duration
	ExpiryPollInterval time.Duration
	ExpiryBatchSize    int
	WorkerPoolSize     int

	ShortenerURL     string
	ShortenerAPIKey  string
	ShortenerTimeout time.Duration

	RedisURL        string
	CallbackSecret  string
	AdminAPIKeyHash string
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultBotWorkers         = 16
	defaultRewardAmount       = "1.5"
	defaultMinWithdraw        = "0"
	defaultCooldown           = time.Hour
	defaultExpiryPollInterval = time.Minute
	defaultExpiryBatchSize    = 32
	defaultWorkerPoolSize     = 4
	defaultShortenerTimeout   = 5 * time.Second
	defaultCallbackSecret     = "change-me-in-production"
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
		BotToken:           getString(lookup, "BOT_TOKEN", ""),
		BotUsername:        strings.TrimPrefix(getString(lookup, "BOT_USERNAME", ""), "@"),
		BotAPIEndpoint:     getString(lookup, "BOT_API_ENDPOINT", ""),
		BotWorkers:         getInt(lookup, "BOT_WORKERS", defaultBotWorkers),
		ForceChannel:       getString(lookup, "FORCE_CHANNEL", ""),
		Cooldown:           getDuration(lookup, "COOLDOWN", defaultCooldown),
		CooldownEnabled:    getBool(lookup, "COOLDOWN_ENABLED", true),
		WithdrawEnabled:    getBool(lookup, "WITHDRAW_ENABLED", true),
		TokenTTL:           getDuration(lookup, "TOKEN_TTL", 0),
		PendingTTL:         getDuration(lookup, "WITHDRAWAL_PENDING_TTL", 0),
		ExpiryPollInterval: getDuration(lookup, "EXPIRY_POLL_INTERVAL", defaultExpiryPollInterval),
		ExpiryBatchSize:    getInt(lookup, "EXPIRY_BATCH_SIZE", defaultExpiryBatchSize),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShortenerURL:       getString(lookup, "SHORTENER_URL", ""),
		ShortenerAPIKey:    getString(lookup, "SHORTENER_API_KEY", ""),
		ShortenerTimeout:   getDuration(lookup, "SHORTENER_TIMEOUT", defaultShortenerTimeout),
		RedisURL:           getString(lookup, "REDIS_URL", ""),
		CallbackSecret:     getString(lookup, "CALLBACK_SECRET", defaultCallbackSecret),
		AdminAPIKeyHash:    getString(lookup, "ADMIN_API_KEY_HASH", ""),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("earnbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		rewardStr          = getString(lookup, "REWARD_AMOUNT", defaultRewardAmount)
		minWithdrawStr     = getString(lookup, "MIN_WITHDRAW", defaultMinWithdraw)
		adminIDsStr        = getString(lookup, "ADMIN_IDS", "")
		adminChatStr       = getString(lookup, "ADMIN_CHAT_ID", "")
		cooldownStr        = cfg.Cooldown.String()
		pendingTTLStr      = cfg.PendingTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BotToken, "bot-token", cfg.BotToken, "Telegram bot token")
	fs.StringVar(&adminIDsStr, "admins", adminIDsStr, "Comma separated admin user IDs")
	fs.StringVar(&adminChatStr, "admin-chat", adminChatStr, "Chat receiving withdrawal requests")
	fs.StringVar(&rewardStr, "reward", rewardStr, "Credit granted per redeemed reward token")
	fs.StringVar(&minWithdrawStr, "min-withdraw", minWithdrawStr, "Minimum withdrawal amount")
	fs.StringVar(&cooldownStr, "cooldown", cooldownStr, "Default time between token issuances")
	fs.StringVar(&pendingTTLStr, "pending-ttl", pendingTTLStr, "Reject pending withdrawals older than this (0 disables)")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent expiry workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RewardAmount, err = model.ParseAmount(rewardStr); err != nil {
		return nil, fmt.Errorf("invalid reward amount: %w", err)
	}
	if !cfg.RewardAmount.Positive() {
		return nil, fmt.Errorf("reward amount must be positive")
	}

	if cfg.MinWithdraw, err = model.ParseAmount(minWithdrawStr); err != nil {
		return nil, fmt.Errorf("invalid minimum withdrawal: %w", err)
	}

	if cfg.Cooldown, err = time.ParseDuration(cooldownStr); err != nil {
		return nil, fmt.Errorf("invalid cooldown: %w", err)
	}

	if cfg.PendingTTL, err = time.ParseDuration(pendingTTLStr); err != nil {
		return nil, fmt.Errorf("invalid pending ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.AdminIDs, err = parseIDs(adminIDsStr); err != nil {
		return nil, fmt.Errorf("invalid admin ids: %w", err)
	}

	if adminChatStr != "" {
		if cfg.AdminChatID, err = strconv.ParseInt(adminChatStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid admin chat id: %w", err)
		}
	}

	if secretFile, ok := lookup("CALLBACK_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read callback secret file: %w", err)
		}
		cfg.CallbackSecret = strings.TrimSpace(string(content))
	}

	if cfg.MinWithdraw < 0 {
		cfg.MinWithdraw = 0
	}

	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}

	if cfg.TokenTTL < 0 {
		cfg.TokenTTL = 0
	}

	if cfg.PendingTTL < 0 {
		cfg.PendingTTL = 0
	}

	if cfg.BotWorkers <= 0 {
		cfg.BotWorkers = defaultBotWorkers
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ExpiryBatchSize <= 0 {
		cfg.ExpiryBatchSize = defaultExpiryBatchSize
	}

	if cfg.ExpiryPollInterval <= 0 {
		cfg.ExpiryPollInterval = defaultExpiryPollInterval
	}

	if cfg.ShortenerTimeout <= 0 {
		cfg.ShortenerTimeout = defaultShortenerTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token must be provided")
	}

	if cfg.AdminChatID == 0 && len(cfg.AdminIDs) > 0 {
		cfg.AdminChatID = cfg.AdminIDs[0]
	}

	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("admin chat id or admin ids must be provided")
	}

	return cfg, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
