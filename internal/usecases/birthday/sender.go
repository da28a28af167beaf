package birthday

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// sendMessage отправляет сообщение пользователю через Telegram Client
func (s *Service) sendMessage(ctx context.Context, chatID int64, text string) error {
	if err := s.TelegramClient.SendMessage(ctx, chatID, text); err != nil {
		s.Log.Error("failed to send message",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// sendMessageWithKeyboard отправляет сообщение с inline клавиатурой
func (s *Service) sendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboard) error {
	if err := s.TelegramClient.SendMessageWithKeyboard(ctx, chatID, text, keyboard); err != nil {
		s.Log.Error("failed to send message with keyboard",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message with keyboard: %w", err)
	}

	return nil
}

// editMessage заменяет сообщение, к которому привязана нажатая кнопка
func (s *Service) editMessage(ctx context.Context, msg *domain.Message, text string, keyboard *domain.InlineKeyboard) error {
	if msg == nil || msg.Chat == nil {
		return fmt.Errorf("callback without message")
	}
	if err := s.TelegramClient.EditMessageText(ctx, msg.Chat.ID, msg.MessageID, text, keyboard); err != nil {
		s.Log.Error("failed to edit message",
			"error", err,
			"chat_id", msg.Chat.ID,
			"message_id", msg.MessageID,
		)
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}
