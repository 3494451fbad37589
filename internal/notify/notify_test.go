package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func entries(t *testing.T) []types.Entry {
	t.Helper()
	a, ok := types.NewEntry("10.06.2024", "Byggesak <Gnr 12>\nTilbakemelding", "Plan og utvikling",
		"https://www.nord-fron.kommune.no/innsyn.aspx?response=arkivsak_detaljer&id=1", "")
	require.True(t, ok)
	b, ok := types.NewEntry("10.06.2024", "Svar på søknad", "Helse", "", "")
	require.True(t, ok)
	return []types.Entry{a, b}
}

func TestFormatText(t *testing.T) {
	got := FormatText(entries(t))
	want := "Dato: 10.06.2024\nTittel: Byggesak <Gnr 12>\nTilbakemelding\nAnsvarlig enhet: Plan og utvikling\n" +
		"Arkivlenke: https://www.nord-fron.kommune.no/innsyn.aspx?response=arkivsak_detaljer&id=1\n\n" +
		"Dato: 10.06.2024\nTittel: Svar på søknad\nAnsvarlig enhet: Helse"
	assert.Equal(t, want, got)
}

func TestFormatHTML(t *testing.T) {
	got := FormatHTML("2024-06-10", entries(t))
	assert.Contains(t, got, "Byggesak &lt;Gnr 12&gt;<br>Tilbakemelding")
	assert.Contains(t, got, `href="https://www.nord-fron.kommune.no/innsyn.aspx?response=arkivsak_detaljer&amp;id=1"`)
	assert.Equal(t, 1, strings.Count(got, ">Arkiv</a>"))
	assert.Equal(t, 3, strings.Count(got, "<tr>"))
}

func TestChunk(t *testing.T) {
	text := strings.Repeat("a", 6) + "\n\n" + strings.Repeat("b", 6) + "\n\n" + strings.Repeat("c", 25)
	parts := chunk(text, 10)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 10)
	}
	assert.Equal(t, "aaaaaa", parts[0])
	assert.Equal(t, "bbbbbb", parts[1])
	assert.Equal(t, text, strings.Join(parts[:2], "\n\n")+"\n\n"+strings.Join(parts[2:], ""))
}

func TestEmailNotifierFallsBackWithoutAuth(t *testing.T) {
	n := NewEmailNotifier(&config.EmailConfig{
		Server: "smtp.example.com", Port: 587, Username: "u", Password: "p",
		From: "varsel@example.com", To: []string{"post@example.com"},
	}, testLogger)

	var auths []smtp.Auth
	var sent *email.Email
	n.send = func(m *email.Email, addr string, a smtp.Auth) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		auths = append(auths, a)
		if a != nil {
			return errors.New("smtp: server doesn't support AUTH")
		}
		sent = m
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), "2024-06-10", entries(t)))
	require.Len(t, auths, 2)
	assert.NotNil(t, auths[0])
	assert.Nil(t, auths[1])
	require.NotNil(t, sent)
	assert.Equal(t, "Postliste 2024-06-10 (2)", sent.Subject)
	assert.Contains(t, string(sent.Text), "Ansvarlig enhet: Helse")
}

func TestEmailNotifierError(t *testing.T) {
	n := NewEmailNotifier(&config.EmailConfig{Server: "smtp.example.com", Port: 25, From: "a@b", To: []string{"c@d"}}, testLogger)
	n.send = func(*email.Email, string, smtp.Auth) error { return errors.New("connection refused") }
	assert.Error(t, n.Notify(context.Background(), "2024-06-10", entries(t)))
}

func TestEmailNotifierGivesUpOnStalledServer(t *testing.T) {
	n := NewEmailNotifier(&config.EmailConfig{
		Server: "smtp.example.com", Port: 25, From: "a@b", To: []string{"c@d"},
		Timeout: 20 * time.Millisecond,
	}, testLogger)
	release := make(chan struct{})
	defer close(release)
	n.send = func(*email.Email, string, smtp.Auth) error {
		<-release
		return nil
	}

	start := time.Now()
	err := n.Notify(context.Background(), "2024-06-10", entries(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	bot := &fakeBot{}
	n := newTelegramNotifier(bot, 42, testLogger)

	require.NoError(t, n.Notify(context.Background(), "2024-06-10", entries(t)))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.True(t, strings.HasPrefix(bot.sent[0].Text, "Postliste 2024-06-10 (2)"))

	bot.err = errors.New("Forbidden: bot was blocked by the user")
	assert.Error(t, n.Notify(context.Background(), "2024-06-10", entries(t)))
}

func TestWebhookNotifier(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(&config.WebhookConfig{
		URL: srv.URL, Headers: map[string]string{"X-Token": "secret"}, Timeout: 5 * time.Second,
	}, testLogger)
	require.NoError(t, n.Notify(context.Background(), "2024-06-10", entries(t)))

	assert.Equal(t, "2024-06-10", got.Date)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Entries, 2)
	assert.Nil(t, got.Entries[1].ArchiveLink)
}

func TestWebhookNotifierStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(&config.WebhookConfig{URL: srv.URL, Timeout: time.Second}, testLogger)
	assert.Error(t, n.Notify(context.Background(), "2024-06-10", entries(t)))
}

func TestNew(t *testing.T) {
	n, err := New(&config.NotifyConfig{Type: "none"}, testLogger)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = New(&config.NotifyConfig{Type: "log"}, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "log", n.Name())
	assert.NoError(t, n.Notify(context.Background(), "2024-06-10", nil))

	_, err = New(&config.NotifyConfig{Type: "pigeon"}, testLogger)
	assert.Error(t, err)
}
