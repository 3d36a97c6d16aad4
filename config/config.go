package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingToken    = errors.New("BOT_TOKEN is not set")
	ErrMissingDatabase = errors.New("DATABASE_URL is not set")
)

// TargetChannel: публичный канал, куда публикуются превью.
type TargetChannel struct {
	ID    int64
	Label string
}

// RequiredChannel: канал, на который пользователь должен быть подписан.
// Key: числовой ID канала или его публичный username без "@".
type RequiredChannel struct {
	Key     string
	Name    string
	Link    string
	Private bool
}

// ChatID возвращает значение, пригодное для getChatMember: int64 или "@handle".
func (c RequiredChannel) ChatID() any {
	if id, err := strconv.ParseInt(c.Key, 10, 64); err == nil {
		return id
	}
	return "@" + strings.TrimPrefix(c.Key, "@")
}

type Config struct {
	BotToken    string
	DatabaseURL string
	DBMaxConns  int32

	AdminIDs        []int64
	SourceChannelID int64
	TargetChannels  []TargetChannel
	Required        []RequiredChannel

	DailyLimit   int
	PremiumUsers []int64

	LogChannelID int64
	LogLevel     string
	LogPretty    bool
	MetricsAddr  string

	Location        *time.Location
	TelegramTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnv("LOG_PRETTY", "false") == "true",
		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	var err error
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil || maxConns < 1 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS %q", os.Getenv("DB_MAX_CONNS"))
	}
	cfg.DBMaxConns = int32(maxConns)

	if cfg.AdminIDs, err = parseIDs(getEnv("ADMIN_IDS", "")); err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	if cfg.PremiumUsers, err = parseIDs(getEnv("PREMIUM_USERS", "")); err != nil {
		return nil, fmt.Errorf("PREMIUM_USERS: %w", err)
	}
	if cfg.SourceChannelID, err = strconv.ParseInt(getEnv("SOURCE_CHANNEL_ID", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("SOURCE_CHANNEL_ID: %w", err)
	}
	if cfg.LogChannelID, err = strconv.ParseInt(getEnv("LOG_CHANNEL_ID", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("LOG_CHANNEL_ID: %w", err)
	}
	if cfg.TargetChannels, err = parseTargets(getEnv("TARGET_CHANNELS", "")); err != nil {
		return nil, fmt.Errorf("TARGET_CHANNELS: %w", err)
	}
	if cfg.Required, err = parseRequired(getEnv("REQUIRED_CHANNELS", "")); err != nil {
		return nil, fmt.Errorf("REQUIRED_CHANNELS: %w", err)
	}

	if cfg.DailyLimit, err = strconv.Atoi(getEnv("DAILY_DOWNLOAD_LIMIT", "300")); err != nil || cfg.DailyLimit < 0 {
		return nil, fmt.Errorf("invalid DAILY_DOWNLOAD_LIMIT %q", os.Getenv("DAILY_DOWNLOAD_LIMIT"))
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	if cfg.TelegramTimeout, err = time.ParseDuration(getEnv("TELEGRAM_TIMEOUT", "10s")); err != nil || cfg.TelegramTimeout <= 0 {
		return nil, fmt.Errorf("invalid TELEGRAM_TIMEOUT %q", os.Getenv("TELEGRAM_TIMEOUT"))
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры запуска.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabase
	}
	return nil
}

func (c *Config) IsAdmin(userID int64) bool {
	return contains(c.AdminIDs, userID)
}

func (c *Config) IsPremium(userID int64) bool {
	return contains(c.PremiumUsers, userID)
}

// RequiredFor ищет обязательный канал по числовому ID или username чата.
func (c *Config) RequiredFor(chatID int64, username string) (RequiredChannel, bool) {
	id := strconv.FormatInt(chatID, 10)
	for _, ch := range c.Required {
		if ch.Key == id {
			return ch, true
		}
		if username != "" && strings.EqualFold(strings.TrimPrefix(ch.Key, "@"), username) {
			return ch, true
		}
	}
	return RequiredChannel{}, false
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTargets разбирает "id|label;id|label".
func parseTargets(s string) ([]TargetChannel, error) {
	var out []TargetChannel
	for _, entry := range splitEntries(s) {
		fields := strings.SplitN(entry, "|", 2)
		id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel id in %q: %w", entry, err)
		}
		label := strconv.FormatInt(id, 10)
		if len(fields) == 2 && strings.TrimSpace(fields[1]) != "" {
			label = strings.TrimSpace(fields[1])
		}
		out = append(out, TargetChannel{ID: id, Label: label})
	}
	return out, nil
}

// parseRequired разбирает "key|name|link|public;key|name|link|private".
func parseRequired(s string) ([]RequiredChannel, error) {
	var out []RequiredChannel
	seen := make(map[string]bool)
	for _, entry := range splitEntries(s) {
		fields := strings.Split(entry, "|")
		if len(fields) != 4 {
			return nil, fmt.Errorf("entry %q must be key|name|link|type", entry)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		key := strings.TrimPrefix(fields[0], "@")
		if key == "" {
			return nil, fmt.Errorf("entry %q has an empty key", entry)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate channel %q", key)
		}
		seen[key] = true

		var private bool
		switch strings.ToLower(fields[3]) {
		case "public", "":
		case "private":
			private = true
		default:
			return nil, fmt.Errorf("entry %q: unknown type %q", entry, fields[3])
		}

		name := fields[1]
		if name == "" {
			name = key
		}
		out = append(out, RequiredChannel{Key: key, Name: name, Link: fields[2], Private: private})
	}
	return out, nil
}

func splitEntries(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ";") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
