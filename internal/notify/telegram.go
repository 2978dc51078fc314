// internal/notify/telegram.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// Notifier delivers human-readable event messages. Delivery is best
// effort: implementations log failures and never propagate them, so a
// broken notification channel can never stall trading.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	client *http.Client
	apiURL string
	chatID string
	logger *zap.Logger
}

// NewTelegram builds a Telegram notifier. With no token or chat id
// configured it returns a Nop so callers never need to branch.
func NewTelegram(cfg *config.Config, logger *zap.Logger) Notifier {
	log := logger.Named("telegram")
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		log.Info("telegram credentials not set, notifications disabled")
		return Nop{}
	}
	return &Telegram{
		client: &http.Client{Timeout: cfg.RequestTimeout()},
		apiURL: fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", cfg.TelegramToken),
		chatID: cfg.TelegramChatID,
		logger: log,
	}
}

// Notify sends one message, retrying up to three attempts and honoring the
// API's rate limit hints.
func (t *Telegram) Notify(ctx context.Context, message string) {
	operation := func() (struct{}, error) {
		return struct{}{}, t.send(ctx, message)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		t.logger.Warn("failed to deliver notification",
			zap.String("message", truncate(message, 80)),
			zap.Error(err))
	}
}

func (t *Telegram) send(ctx context.Context, message string) error {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {message},
		"parse_mode": {"Markdown"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var body struct {
			Parameters struct {
				RetryAfter int `json:"retry_after"`
			} `json:"parameters"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Parameters.RetryAfter > 0 {
			return backoff.RetryAfter(body.Parameters.RetryAfter)
		}
		return fmt.Errorf("telegram rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
