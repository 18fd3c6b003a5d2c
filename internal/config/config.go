package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportInterval time.Duration
	ReportAt       string // HH:MM; overrides ReportInterval when set
	Locale         string
	Currency       string
	Timezone       string
	LogLevel       string
}

// Load reads configuration from an optional config.yaml in the working
// directory, overridden by environment variables, with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("database_url", "bill_tracker.db")
	v.SetDefault("report_interval_hours", 24)
	v.SetDefault("locale", "pt-BR")
	v.SetDefault("currency", "BRL")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		ReportInterval: time.Duration(v.GetInt("report_interval_hours")) * time.Hour,
		ReportAt:       strings.TrimSpace(v.GetString("report_at")),
		Locale:         strings.TrimSpace(v.GetString("locale")),
		Currency:       strings.ToUpper(strings.TrimSpace(v.GetString("currency"))),
		Timezone:       strings.TrimSpace(v.GetString("timezone")),
		LogLevel:       strings.TrimSpace(v.GetString("log_level")),
	}

	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = 24 * time.Hour
	}

	return cfg, nil
}

// RequireTelegram fails when the bot cannot be started with this config.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the process time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
