// Package notify delivers newly published listings to people.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Notifier delivers one date's listing. Implementations must not retain entries.
type Notifier interface {
	Notify(ctx context.Context, date string, entries []types.Entry) error
	Name() string
}

// New builds the notifier selected by cfg.Type. It returns nil for "none".
func New(cfg *config.NotifyConfig, logger *slog.Logger) (Notifier, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "log":
		return NewLogNotifier(logger), nil
	case "email":
		return NewEmailNotifier(&cfg.Email, logger), nil
	case "telegram":
		return NewTelegramNotifier(&cfg.Telegram, logger)
	case "webhook":
		return NewWebhookNotifier(&cfg.Webhook, logger), nil
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", cfg.Type)
	}
}

// LogNotifier writes the listing to the log instead of sending it anywhere.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "log_notifier")}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, date string, entries []types.Entry) error {
	n.logger.Info("new listing ready", "date", date, "entries", len(entries))
	n.logger.Debug("listing body", "text", FormatText(entries))
	return nil
}
