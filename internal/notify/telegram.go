package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// telegramMessageLimit is the Bot API text length limit.
const telegramMessageLimit = 4096

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts the listing to a chat, split across messages when long.
type TelegramNotifier struct {
	bot    botSender
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier authenticates the bot token and returns a notifier.
func NewTelegramNotifier(cfg *config.TelegramConfig, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "account", bot.Self.UserName)
	return newTelegramNotifier(bot, cfg.ChatID, logger), nil
}

func newTelegramNotifier(bot botSender, chatID int64, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With("component", "telegram_notifier"),
	}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(ctx context.Context, date string, entries []types.Entry) error {
	text := Subject(date, len(entries)) + "\n\n" + FormatText(entries)
	parts := chunk(text, telegramMessageLimit)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram send part %d/%d: %w", i+1, len(parts), err)
		}
	}
	n.logger.Info("listing posted", "date", date, "entries", len(entries), "messages", len(parts))
	return nil
}
