package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Site.SearchURL); err != nil {
		return fmt.Errorf("site.search_url: %w", err)
	}
	if err := ValidateURL(cfg.Site.Origin); err != nil {
		return fmt.Errorf("site.origin: %w", err)
	}
	if err := ValidateURL(cfg.Site.DocumentOrigin); err != nil {
		return fmt.Errorf("site.document_origin: %w", err)
	}
	if cfg.Site.ItemSelector == "" {
		return fmt.Errorf("site.item_selector must not be empty")
	}

	if cfg.Fetcher.Type != "browser" && cfg.Fetcher.Type != "http" {
		return fmt.Errorf("fetcher.type must be 'browser' or 'http', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.PageTimeout <= 0 {
		return fmt.Errorf("fetcher.page_timeout must be > 0")
	}
	if cfg.Fetcher.StableWait < 0 {
		return fmt.Errorf("fetcher.stable_wait must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Walker.MaxPages < 0 {
		return fmt.Errorf("walker.max_pages must be >= 0, got %d", cfg.Walker.MaxPages)
	}
	if cfg.Walker.PageDelay < 0 {
		return fmt.Errorf("walker.page_delay must be >= 0")
	}

	switch cfg.Notify.Type {
	case "log", "none":
	case "email":
		if cfg.Notify.Email.Server == "" || cfg.Notify.Email.From == "" || len(cfg.Notify.Email.To) == 0 {
			return fmt.Errorf("notify.email requires server, from and to")
		}
	case "telegram":
		if cfg.Notify.Telegram.Token == "" || cfg.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("notify.telegram requires token and chat_id")
		}
	case "webhook":
		if err := ValidateURL(cfg.Notify.Webhook.URL); err != nil {
			return fmt.Errorf("notify.webhook.url: %w", err)
		}
	default:
		return fmt.Errorf("notify.type %q is not supported (valid: log, email, telegram, webhook, none)", cfg.Notify.Type)
	}

	backends, err := cfg.Storage.Backends()
	if err != nil {
		return fmt.Errorf("storage.type: %w", err)
	}
	for _, typ := range backends {
		if typ == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb")
		}
	}

	if cfg.Schedule.Enabled {
		if _, err := time.Parse("15:04", cfg.Schedule.At); err != nil {
			return fmt.Errorf("schedule.at must be HH:MM, got %q", cfg.Schedule.At)
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks that a URL is absolute http(s).
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// Backends splits Type into archive backend names. Blank items and "none"
// are skipped, so "" and "none" both mean no archive.
func (c StorageConfig) Backends() ([]string, error) {
	var out []string
	for _, typ := range strings.Split(c.Type, ",") {
		switch typ = strings.TrimSpace(typ); typ {
		case "", "none":
		case "jsonl", "csv", "mongodb":
			out = append(out, typ)
		default:
			return nil, fmt.Errorf("%q is not supported (valid: none, jsonl, csv, mongodb)", typ)
		}
	}
	return out, nil
}
