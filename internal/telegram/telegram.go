// Package telegram connects the dispatcher to the Telegram Bot API through
// long polling.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"finbot/internal/bot"
	applog "finbot/internal/log"
)

// maxMessageLen is the Telegram limit for one text message, in characters.
const maxMessageLen = 4096

// API is the subset of *tgbotapi.BotAPI used here.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler interface {
	Handle(ctx context.Context, msg bot.Message) string
}

type Bot struct {
	api         API
	handler     Handler
	pollTimeout int
	logger      *applog.Logger
}

// Connect authenticates token against the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return api, nil
}

func New(api API, handler Handler, pollTimeout time.Duration, logger *applog.Logger) *Bot {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Bot{
		api:         api,
		handler:     handler,
		pollTimeout: int(pollTimeout / time.Second),
		logger:      logger.WithComponent(applog.ComponentTelegram),
	}
}

// Run handles updates one at a time until ctx is cancelled or the update
// channel closes.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("Finance bot polling for updates", "poll_timeout_s", b.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Stopped polling", "reason", ctx.Err())
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg, ok := toMessage(update)
	if !ok {
		return
	}

	logger := b.logger.With(
		applog.FieldRequestID, uuid.NewString(),
		applog.FieldUpdateID, update.UpdateID,
		applog.FieldUserID, msg.UserID,
		applog.FieldChatID, msg.ChatID,
	)
	ctx = applog.WithContext(ctx, logger)

	start := time.Now()
	reply := b.handler.Handle(ctx, msg)
	if reply == "" {
		return
	}

	for i, chunk := range splitMessage(reply, maxMessageLen) {
		out := tgbotapi.NewMessage(msg.ChatID, chunk)
		if i == 0 {
			out.ReplyToMessageID = msg.MessageID
		}
		if _, err := b.api.Send(out); err != nil {
			logger.ErrorContext(ctx, "Failed to send reply", applog.FieldError, err)
			return
		}
	}
	logger.DebugContext(ctx, "Update handled", applog.FieldDuration, time.Since(start).Milliseconds())
}

// toMessage keeps text messages from users and drops everything else.
func toMessage(update tgbotapi.Update) (bot.Message, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return bot.Message{}, false
	}
	name := m.From.FirstName
	if name == "" {
		name = m.From.UserName
	}
	return bot.Message{
		UserID:      m.From.ID,
		ChatID:      m.Chat.ID,
		MessageID:   m.MessageID,
		DisplayName: name,
		Text:        m.Text,
	}, true
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		cut := limit
		if nl := strings.LastIndex(string(runes[:limit]), "\n"); nl > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit])[:nl])
		}
		chunks = append(chunks, string(runes[:cut]))
		text = strings.TrimPrefix(string(runes[cut:]), "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
