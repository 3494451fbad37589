package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for postwatch.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"     yaml:"site"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Walker   WalkerConfig   `mapstructure:"walker"   yaml:"walker"`
	Notify   NotifyConfig   `mapstructure:"notify"   yaml:"notify"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// SiteConfig describes the scraped records site.
type SiteConfig struct {
	// SearchURL is the listing query without the fradato parameter.
	SearchURL      string `mapstructure:"search_url"      yaml:"search_url"`
	Origin         string `mapstructure:"origin"          yaml:"origin"`
	DocumentOrigin string `mapstructure:"document_origin" yaml:"document_origin"`
	ItemSelector   string `mapstructure:"item_selector"   yaml:"item_selector"`
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	Type        string        `mapstructure:"type"         yaml:"type"`
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	StableWait  time.Duration `mapstructure:"stable_wait"  yaml:"stable_wait"`
	Stealth     bool          `mapstructure:"stealth"      yaml:"stealth"`
	Headless    bool          `mapstructure:"headless"     yaml:"headless"`
	BrowserBin  string        `mapstructure:"browser_bin"  yaml:"browser_bin"`
	UserAgent   string        `mapstructure:"user_agent"   yaml:"user_agent"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// WalkerConfig controls pagination.
type WalkerConfig struct {
	MaxPages  int           `mapstructure:"max_pages"  yaml:"max_pages"`
	PageDelay time.Duration `mapstructure:"page_delay" yaml:"page_delay"`
}

// NotifyConfig selects and configures the notifier.
type NotifyConfig struct {
	Type     string         `mapstructure:"type"     yaml:"type"`
	Email    EmailConfig    `mapstructure:"email"    yaml:"email"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Webhook  WebhookConfig  `mapstructure:"webhook"  yaml:"webhook"`
}

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Server   string   `mapstructure:"server"   yaml:"server"`
	Port     int      `mapstructure:"port"     yaml:"port"`
	Username string   `mapstructure:"username" yaml:"username"`
	Password string   `mapstructure:"password" yaml:"password"`
	From     string   `mapstructure:"from"     yaml:"from"`
	To       []string `mapstructure:"to"       yaml:"to"`
	// Timeout bounds one delivery including the unauthenticated retry.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TelegramConfig configures bot delivery.
type TelegramConfig struct {
	Token  string `mapstructure:"token"   yaml:"token"`
	ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
}

// WebhookConfig configures JSON webhook delivery.
type WebhookConfig struct {
	URL     string            `mapstructure:"url"     yaml:"url"`
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	Timeout time.Duration     `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig controls the listing archive.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ScheduleConfig controls the daily trigger.
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	At      string `mapstructure:"at"      yaml:"at"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config pointed at the Nord-Fron postliste.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			SearchURL:      "https://www.nord-fron.kommune.no/innsyn.aspx?response=journalpost_postliste&MId1=758&scripturi=/innsyn.aspx&skin=infolink&tittel=&fratil=&doktype=&simple=true&sok=S%C3%B8k",
			Origin:         "https://www.nord-fron.kommune.no",
			DocumentOrigin: "https://innsyn.onacos.no",
			ItemSelector:   "li.np.i-par.i-jp",
		},
		Fetcher: FetcherConfig{
			Type:        "browser",
			PageTimeout: 45 * time.Second,
			StableWait:  500 * time.Millisecond,
			Headless:    true,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Walker: WalkerConfig{
			MaxPages:  200,
			PageDelay: 250 * time.Millisecond,
		},
		Notify: NotifyConfig{
			Type: "log",
			Email: EmailConfig{
				Port:    587,
				Timeout: 30 * time.Second,
			},
			Webhook: WebhookConfig{
				Timeout: 15 * time.Second,
			},
		},
		Storage: StorageConfig{
			Type:            "none",
			OutputPath:      "./output/postliste.jsonl",
			MongoDatabase:   "postwatch",
			MongoCollection: "listings",
		},
		Schedule: ScheduleConfig{
			Enabled: true,
			At:      "14:00",
		},
		Server: ServerConfig{
			Port: 5001,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}
