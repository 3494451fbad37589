package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("POSTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("postwatch")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".postwatch"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("site.search_url", cfg.Site.SearchURL)
	v.SetDefault("site.origin", cfg.Site.Origin)
	v.SetDefault("site.document_origin", cfg.Site.DocumentOrigin)
	v.SetDefault("site.item_selector", cfg.Site.ItemSelector)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.page_timeout", cfg.Fetcher.PageTimeout)
	v.SetDefault("fetcher.stable_wait", cfg.Fetcher.StableWait)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)
	v.SetDefault("fetcher.headless", cfg.Fetcher.Headless)
	v.SetDefault("fetcher.browser_bin", cfg.Fetcher.BrowserBin)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)

	v.SetDefault("walker.max_pages", cfg.Walker.MaxPages)
	v.SetDefault("walker.page_delay", cfg.Walker.PageDelay)

	v.SetDefault("notify.type", cfg.Notify.Type)
	v.SetDefault("notify.email.server", cfg.Notify.Email.Server)
	v.SetDefault("notify.email.port", cfg.Notify.Email.Port)
	v.SetDefault("notify.email.username", cfg.Notify.Email.Username)
	v.SetDefault("notify.email.password", cfg.Notify.Email.Password)
	v.SetDefault("notify.email.from", cfg.Notify.Email.From)
	v.SetDefault("notify.email.to", cfg.Notify.Email.To)
	v.SetDefault("notify.email.timeout", cfg.Notify.Email.Timeout)
	v.SetDefault("notify.telegram.token", cfg.Notify.Telegram.Token)
	v.SetDefault("notify.telegram.chat_id", cfg.Notify.Telegram.ChatID)
	v.SetDefault("notify.webhook.url", cfg.Notify.Webhook.URL)
	v.SetDefault("notify.webhook.timeout", cfg.Notify.Webhook.Timeout)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("schedule.enabled", cfg.Schedule.Enabled)
	v.SetDefault("schedule.at", cfg.Schedule.At)

	v.SetDefault("server.port", cfg.Server.Port)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
