package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

const privateChat = "private"

// HandleUpdate Основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	switch {
	case update.Message != nil:
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	case update.CallbackQuery != nil:
		return s.HandleCallbackQuery(ctx, update.CallbackQuery, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение - роутинг в usecase
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat == nil || message.Chat.Type != privateChat {
		s.Log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", chatType(message.Chat),
		)
		return nil
	}

	if message.Text == nil {
		return nil
	}

	user, err := s.BotService.GetOrCreateUser(ctx, message.From, message.Chat)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", message.From.ID,
			"update_id", updateID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	return s.routeTextMessage(ctx, user, *message.Text)
}

// HandleCallbackQuery обрабатывает нажатие inline-кнопки
func (s *Service) HandleCallbackQuery(ctx context.Context, query *domain.CallbackQuery, updateID int64) error {
	if query.From == nil || query.From.IsBot {
		s.Log.Debug("ignoring callback from bot", "update_id", updateID)
		return nil
	}

	var chat *domain.Chat
	if query.Message != nil {
		chat = query.Message.Chat
	}
	if chat == nil || chat.Type != privateChat {
		s.Log.Warn("ignoring callback outside private chat",
			"update_id", updateID,
			"chat_type", chatType(chat),
		)
		return nil
	}

	user, err := s.BotService.GetOrCreateUser(ctx, query.From, chat)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", query.From.ID,
			"update_id", updateID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	return s.BotService.HandleCallback(ctx, user, query)
}

// routeTextMessage роутит в команду/текст
func (s *Service) routeTextMessage(ctx context.Context, user *domain.User, text string) error {
	if IsCommand(text) {
		command, args := ParseCommand(text)
		if command == "" {
			return s.BotService.HandleText(ctx, user, text)
		}
		return s.BotService.HandleCommand(ctx, user, command, args)
	}

	return s.BotService.HandleText(ctx, user, text)
}

// ParseCommand разбирает "/cmd@bot args" на команду в нижнем регистре и аргументы
func ParseCommand(text string) (string, string) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "/"))

	command, args, _ := strings.Cut(text, " ")
	if idx := strings.IndexAny(command, "\n\t"); idx != -1 {
		args = command[idx+1:] + " " + args
		command = command[:idx]
	}
	if idx := strings.Index(command, "@"); idx != -1 {
		command = command[:idx]
	}

	return strings.ToLower(command), strings.TrimSpace(args)
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}

func chatType(chat *domain.Chat) string {
	if chat == nil {
		return ""
	}
	return chat.Type
}
