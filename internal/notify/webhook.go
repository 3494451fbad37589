package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	Date    string        `json:"date"`
	Count   int           `json:"count"`
	Text    string        `json:"text"`
	Entries []types.Entry `json:"entries"`
}

// WebhookNotifier POSTs the listing as JSON.
type WebhookNotifier struct {
	url    string
	client *resty.Client
	logger *slog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier.
func NewWebhookNotifier(cfg *config.WebhookConfig, logger *slog.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "postwatch/"+config.Version).
		SetHeaders(cfg.Headers)

	return &WebhookNotifier{
		url:    cfg.URL,
		client: client,
		logger: logger.With("component", "webhook_notifier"),
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

func (n *WebhookNotifier) Notify(ctx context.Context, date string, entries []types.Entry) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(WebhookPayload{
			Date:    date,
			Count:   len(entries),
			Text:    FormatText(entries),
			Entries: entries,
		}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook post: unexpected status %d", resp.StatusCode())
	}
	n.logger.Info("listing delivered", "date", date, "entries", len(entries), "status", resp.StatusCode())
	return nil
}
