package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// EmailNotifier sends the listing as an HTML mail with a plain text part.
type EmailNotifier struct {
	cfg    *config.EmailConfig
	send   func(m *email.Email, addr string, a smtp.Auth) error
	logger *slog.Logger
}

// NewEmailNotifier creates an EmailNotifier for the given SMTP settings.
func NewEmailNotifier(cfg *config.EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg: cfg,
		send: func(m *email.Email, addr string, a smtp.Auth) error {
			return m.Send(addr, a)
		},
		logger: logger.With("component", "email_notifier"),
	}
}

func (n *EmailNotifier) Name() string { return "email" }

// Message builds the mail for a listing without sending it.
func (n *EmailNotifier) Message(date string, entries []types.Entry) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("postwatch <%s>", n.cfg.From)
	mail.To = n.cfg.To
	mail.Subject = Subject(date, len(entries))
	mail.Text = []byte(FormatText(entries))
	mail.HTML = []byte(FormatHTML(date, entries))
	return mail
}

func (n *EmailNotifier) Notify(ctx context.Context, date string, entries []types.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := n.Message(date, entries)
	addr := fmt.Sprintf("%s:%d", n.cfg.Server, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Server)
	}

	if err := n.deliver(ctx, mail, addr, auth); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}

	n.logger.Info("listing mailed", "date", date, "entries", len(entries), "to", strings.Join(n.cfg.To, ","))
	return nil
}

// deliver sends mail in the background and gives up when ctx ends or the
// configured timeout passes. The SMTP exchange itself has no deadline, so a
// stalled server only holds the background goroutine.
func (n *EmailNotifier) deliver(ctx context.Context, mail *email.Email, addr string, auth smtp.Auth) error {
	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		err := n.send(mail, addr, auth)
		if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
			n.logger.Warn("SMTP server has no AUTH, retrying unauthenticated", "server", addr)
			err = n.send(mail, addr, nil)
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp delivery abandoned: %w", ctx.Err())
	}
}
