// Package telegram delivers assistant replies through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// maxMessageRunes is the Bot API limit for a text message.
const maxMessageRunes = 4096

// Sender sends text messages with a bot created on first use.
type Sender struct {
	token       string
	apiEndpoint string
	client      *http.Client
	logger      *slog.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewSender(cfg config.TelegramConfig, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	s := &Sender{
		token:       cfg.Token,
		apiEndpoint: cfg.APIEndpoint,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      log.With(slog.String("channel", "telegram")),
	}
	_ = tgbotapi.SetLogger(&slogBotLogger{log: s.logger})
	return s
}

func (s *Sender) getOrCreateBot() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		return s.bot, nil
	}
	if s.token == "" {
		return nil, fmt.Errorf("telegram token not configured")
	}
	endpoint := s.apiEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(s.token, endpoint, s.client)
	if err != nil {
		s.logger.Error("create bot failed", slog.Any("error", err))
		return nil, err
	}
	s.bot = bot
	return bot, nil
}

// Send posts text to chatID. Numeric ids address a chat directly; anything
// else is passed through as a channel username.
func (s *Sender) Send(ctx context.Context, chatID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := s.getOrCreateBot()
	if err != nil {
		return err
	}

	text = truncateText(text)
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(chatID, text)
	}

	start := time.Now()
	_, err = bot.Send(msg)
	metrics.ProviderCallDuration.WithLabelValues("telegram").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

func truncateText(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageRunes-1]) + "…"
}

type slogBotLogger struct {
	log *slog.Logger
}

func (l *slogBotLogger) Println(v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l *slogBotLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
