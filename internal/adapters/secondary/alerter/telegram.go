package alerter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/telegram"
)

// Client отправляет алерты в группу (или топик форума) через Telegram Bot API
type Client struct {
	telegramClient  *telegram.Client
	chatID          int64
	messageThreadID *int64
	log             *slog.Logger
}

// NewClient nil, если алерты выключены. Без собственного токена используется botClient.
func NewClient(cfg *Config, botClient *telegram.Client, log *slog.Logger) *Client {
	if !cfg.Enabled() {
		return nil
	}

	tgClient := botClient
	if cfg.BotToken != "" {
		tgClient = telegram.NewClient(cfg.BotToken, log)
	}

	return &Client{
		telegramClient:  tgClient,
		chatID:          cfg.ChatID,
		messageThreadID: cfg.MessageThreadID,
		log:             log,
	}
}

// SendAlert текст уходит без разметки: в нём бывают сообщения ошибок с угловыми скобками
func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.telegramClient == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	_, err := c.telegramClient.SendMessageWithRequest(ctx, telegram.SendMessageRequest{
		ChatID:          c.chatID,
		Text:            message,
		MessageThreadID: c.messageThreadID,
	})
	if err != nil {
		c.log.Warn("failed to send alert",
			"error", err,
			"chat_id", c.chatID,
			"message_thread_id", c.messageThreadID,
		)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent successfully", "chat_id", c.chatID)
	return nil
}
