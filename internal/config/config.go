package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"guild-tasks/internal/model"
)

// Config keeps runtime settings for the bot.
type Config struct {
	DiscordToken    string
	ApplicationID   string
	GuildID         string
	DatabaseURL     string
	Categories      []model.Category
	ReminderChannel string
	ReminderTime    string
	Location        *time.Location
	CleanupInterval time.Duration
	Retention       time.Duration
	TelegramToken   string
	TelegramChatID  int64
}

// TelegramEnabled reports whether reminders are mirrored to Telegram.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load reads configuration from a .env file, environment variables and an
// optional YAML file, with sane defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_url", "guild_tasks.db")
	v.SetDefault("categories", "shopping,todo")
	v.SetDefault("reminder_channel", "today")
	v.SetDefault("reminder_time", "07:00")
	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("cleanup_interval", time.Hour)
	v.SetDefault("retention", 24*time.Hour)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		DiscordToken:    strings.TrimSpace(v.GetString("discord_token")),
		ApplicationID:   strings.TrimSpace(v.GetString("client_id")),
		GuildID:         strings.TrimSpace(v.GetString("guild_id")),
		DatabaseURL:     strings.TrimSpace(v.GetString("database_url")),
		ReminderChannel: strings.TrimSpace(v.GetString("reminder_channel")),
		ReminderTime:    strings.TrimSpace(v.GetString("reminder_time")),
		CleanupInterval: v.GetDuration("cleanup_interval"),
		Retention:       v.GetDuration("retention"),
		TelegramToken:   strings.TrimSpace(v.GetString("telegram_token")),
		TelegramChatID:  v.GetInt64("telegram_chat_id"),
	}

	categories, err := parseCategories(v.Get("categories"))
	if err != nil {
		return cfg, err
	}
	cfg.Categories = categories

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return cfg, fmt.Errorf("timezone: %w", err)
	}
	cfg.Location = loc

	if cfg.CleanupInterval <= 0 {
		return cfg, fmt.Errorf("cleanup_interval must be positive")
	}
	if cfg.Retention <= 0 {
		return cfg, fmt.Errorf("retention must be positive")
	}

	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

// parseCategories accepts a comma separated string or a YAML list. Each
// item is either "key" or "key=channel".
func parseCategories(raw interface{}) ([]model.Category, error) {
	var items []string
	switch value := raw.(type) {
	case string:
		items = strings.Split(value, ",")
	case []string:
		items = value
	case []interface{}:
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
	default:
		return nil, fmt.Errorf("categories: unsupported value %v", raw)
	}

	var categories []model.Category
	seen := make(map[string]bool)
	for _, item := range items {
		key, channel, _ := strings.Cut(strings.TrimSpace(item), "=")
		key = strings.TrimSpace(key)
		channel = strings.TrimSpace(channel)
		if key == "" {
			continue
		}
		if channel == "" {
			channel = key
		}
		if seen[key] {
			return nil, fmt.Errorf("categories: duplicate %q", key)
		}
		seen[key] = true
		categories = append(categories, model.Category{Key: key, Label: key, Channel: channel})
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("categories: at least one category is required")
	}
	return categories, nil
}
