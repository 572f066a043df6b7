package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cdrip/internal/config"
	"cdrip/internal/services/abcde"
)

const (
	userAgent      = "cdrip/0.1.0"
	defaultBaseURL = "https://api.telegram.org"
)

// Delivery reports the outcome of a best-effort notification. It is a value,
// not an error: callers consume it for logging only, so a failed notification
// can never be mistaken for a workflow failure.
type Delivery struct {
	// Sent reports whether any message reached the endpoint.
	Sent bool
	// Downgraded reports that a photo message failed and was retried as text.
	Downgraded bool
	// Err holds the last transport failure, if any.
	Err error
}

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRipStarted(ctx context.Context, devicePath string) Delivery
	NotifyRipCompleted(ctx context.Context, meta abcde.Metadata, devicePath string) Delivery
	NotifyRipFailed(ctx context.Context, devicePath string, exitCode int) Delivery
	NotifyUploadFailed(ctx context.Context, devicePath, album string) Delivery
	Test(ctx context.Context) Delivery
}

// Option configures the Telegram service.
type Option func(*telegramService)

// WithBaseURL overrides the Telegram API base URL (primarily for tests).
func WithBaseURL(baseURL string) Option {
	return func(s *telegramService) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

// NewService builds a notification service backed by the Telegram Bot API.
// When no token or chat id is configured, a noop implementation is returned.
func NewService(cfg *config.Config, opts ...Option) Service {
	if cfg == nil || !cfg.TelegramConfigured() {
		return noopService{}
	}

	timeout := time.Duration(cfg.Telegram.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	svc := &telegramService{
		baseURL:   defaultBaseURL,
		token:     strings.TrimSpace(cfg.Telegram.Token),
		chatID:    strings.TrimSpace(cfg.Telegram.ChatID),
		parseMode: cfg.Telegram.ParseMode,
		client:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type telegramService struct {
	baseURL   string
	token     string
	chatID    string
	parseMode string
	client    *http.Client
}

func (s *telegramService) NotifyRipStarted(ctx context.Context, devicePath string) Delivery {
	message := fmt.Sprintf("💿 **CD Rip Started**\nDevice: `%s`", devicePath)
	return s.send(ctx, message, "")
}

func (s *telegramService) NotifyRipCompleted(ctx context.Context, meta abcde.Metadata, devicePath string) Delivery {
	message := fmt.Sprintf(
		"✅ **CD Rip Completed**\n🎵 **Artist:** %s\n💿 **Album:** %s\n📂 Device: `%s`",
		meta.Artist, meta.Album, devicePath,
	)
	return s.send(ctx, message, meta.CoverURL)
}

func (s *telegramService) NotifyRipFailed(ctx context.Context, devicePath string, exitCode int) Delivery {
	message := fmt.Sprintf("❌ **CD Rip Failed**\nDevice: `%s`\nError Code: `%d`", devicePath, exitCode)
	return s.send(ctx, message, "")
}

func (s *telegramService) NotifyUploadFailed(ctx context.Context, devicePath, album string) Delivery {
	message := fmt.Sprintf("⚠️ **Upload Trigger Failed**\nDevice: `%s`\nAlbum: %s", devicePath, album)
	return s.send(ctx, message, "")
}

func (s *telegramService) Test(ctx context.Context) Delivery {
	return s.send(ctx, "🧪 cdrip notification test", "")
}

// send posts a photo-with-caption request when imageURL is set, falling back
// to a plain text message. A failed photo send is retried once as text-only
// before giving up; this is the only retry in the system.
func (s *telegramService) send(ctx context.Context, message, imageURL string) Delivery {
	if imageURL != "" {
		err := s.post(ctx, "sendPhoto", map[string]string{
			"chat_id":    s.chatID,
			"photo":      imageURL,
			"caption":    message,
			"parse_mode": s.parseMode,
		})
		if err == nil {
			return Delivery{Sent: true}
		}
		if textErr := s.postText(ctx, message); textErr == nil {
			return Delivery{Sent: true, Downgraded: true, Err: err}
		}
		return Delivery{Err: err}
	}

	if err := s.postText(ctx, message); err != nil {
		return Delivery{Err: err}
	}
	return Delivery{Sent: true}
}

func (s *telegramService) postText(ctx context.Context, message string) error {
	return s.post(ctx, "sendMessage", map[string]string{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": s.parseMode,
	})
}

func (s *telegramService) post(ctx context.Context, method string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram %s returned %d: %s", method, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRipStarted(context.Context, string) Delivery { return Delivery{} }
func (noopService) NotifyRipCompleted(context.Context, abcde.Metadata, string) Delivery {
	return Delivery{}
}
func (noopService) NotifyRipFailed(context.Context, string, int) Delivery { return Delivery{} }
func (noopService) NotifyUploadFailed(context.Context, string, string) Delivery {
	return Delivery{}
}
func (noopService) Test(context.Context) Delivery { return Delivery{} }
