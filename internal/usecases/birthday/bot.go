package birthday

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

// Префиксы callback_data inline-кнопок (лимит Telegram - 64 байта)
const (
	cbCategory     = "cat:"
	cbPhotoAdd     = "photo:add"
	cbPhotoSkip    = "photo:skip"
	cbNotesAdd     = "notes:add"
	cbNotesSkip    = "notes:skip"
	cbViewCategory = "view_cat:"
	cbUpdate       = "upd:"
	cbSetCategory  = "setcat:"
	cbAdminList    = "admin_list:"
	cbExport       = "export:"

	scopeActive = "active"
	scopeAll    = "all"
)

// GetOrCreateUser создаёт пользователя при первом обращении и обновляет chat_id/username
func (s *Service) GetOrCreateUser(ctx context.Context, tgUser *domain.TelegramUser, chat *domain.Chat) (*domain.User, error) {
	firstName := tgUser.FirstName
	user, err := s.UserRepo.GetOrCreate(ctx, &domain.User{
		ID:        tgUser.ID,
		ChatID:    chat.ID,
		Username:  tgUser.Username,
		FirstName: &firstName,
		Timezone:  domain.DefaultTimezone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return user, nil
}

// HandleCommand обрабатывает команду; любая команда прерывает начатый диалог
func (s *Service) HandleCommand(ctx context.Context, user *domain.User, command string, args string) error {
	chatID := user.ReplyChatID()

	if command == "cancel" {
		return s.handleCancel(ctx, user)
	}
	if err := s.clearConversation(ctx, user); err != nil {
		s.Log.Warn("failed to reset conversation", "error", err, "user_id", user.ID)
	}

	if isAdminCommand(command) {
		if !s.isSuperadmin(user) {
			s.Log.Warn("admin command denied", "user_id", user.ID, "command", command)
			return s.sendMessage(ctx, chatID, texts.AccessDenied)
		}
		return s.handleAdminCommand(ctx, user, command, args)
	}

	switch command {
	case "start", "help":
		return s.sendMessage(ctx, chatID, texts.Welcome)
	case "add":
		return s.startAddFlow(ctx, user)
	case "add_birthday":
		return s.handleQuickAdd(ctx, user, args)
	case "delete_birthday":
		return s.handleDelete(ctx, user, args)
	case "update_birthday":
		return s.handleUpdateMenu(ctx, user, args)
	case "restore_birthday":
		return s.handleRestore(ctx, user, args)
	case "my_birthdays":
		return s.handleMyBirthdays(ctx, user)
	case "categories":
		return s.sendMessageWithKeyboard(ctx, chatID, texts.CategoriesMenu, categoryKeyboard(cbViewCategory, ""))
	case "birthdays_month":
		return s.handleMonth(ctx, user, args)
	case "my_stats":
		return s.handleMyStats(ctx, user)
	case "set_timezone":
		return s.handleSetTimezone(ctx, user, args)
	default:
		return s.sendMessage(ctx, chatID, texts.FormatUnknownCommand(command))
	}
}

// HandleText обрабатывает текст вне команд: ответ на шаг диалога или подсказка
func (s *Service) HandleText(ctx context.Context, user *domain.User, text string) error {
	conv, err := s.loadConversation(ctx, user)
	if err != nil {
		s.Log.Error("failed to load conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	if !conv.State.ExpectsText() {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.UseCommands)
	}
	return s.continueFlow(ctx, user, conv, strings.TrimSpace(text))
}

// HandleCallback обрабатывает нажатие inline-кнопки
func (s *Service) HandleCallback(ctx context.Context, user *domain.User, query *domain.CallbackQuery) error {
	if err := s.TelegramClient.AnswerCallbackQuery(ctx, query.ID, "", false); err != nil {
		s.Log.Warn("failed to answer callback query", "error", err, "callback_id", query.ID)
	}
	if query.Data == nil {
		return nil
	}
	data := *query.Data
	msg := query.Message

	switch {
	case strings.HasPrefix(data, cbCategory):
		return s.onCategoryChosen(ctx, user, msg, strings.TrimPrefix(data, cbCategory))
	case data == cbPhotoAdd || data == cbPhotoSkip:
		return s.onPhotoChoice(ctx, user, msg, data == cbPhotoAdd)
	case data == cbNotesAdd || data == cbNotesSkip:
		return s.onNotesChoice(ctx, user, msg, data == cbNotesAdd)
	case strings.HasPrefix(data, cbViewCategory):
		return s.onViewCategory(ctx, user, msg, strings.TrimPrefix(data, cbViewCategory))
	case strings.HasPrefix(data, cbUpdate):
		return s.onUpdateField(ctx, user, msg, strings.TrimPrefix(data, cbUpdate))
	case strings.HasPrefix(data, cbSetCategory):
		return s.onSetCategory(ctx, user, msg, strings.TrimPrefix(data, cbSetCategory))
	case strings.HasPrefix(data, cbAdminList), strings.HasPrefix(data, cbExport):
		if !s.isSuperadmin(user) {
			return s.sendMessage(ctx, user.ReplyChatID(), texts.AccessDenied)
		}
		return s.onAdminCallback(ctx, user, msg, data)
	default:
		s.Log.Warn("unknown callback data", "data", data, "user_id", user.ID)
		return nil
	}
}

func (s *Service) handleCancel(ctx context.Context, user *domain.User) error {
	conv, err := s.loadConversation(ctx, user)
	if err != nil {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	if conv.State == domain.StateIdle {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.NothingToCancel)
	}
	if err := s.clearConversation(ctx, user); err != nil {
		s.Log.Error("failed to clear conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.Cancelled)
}

// sendResult ✅/❌ с сообщением результата
func (s *Service) sendResult(ctx context.Context, chatID int64, result domain.Result) error {
	if result.Success {
		return s.sendMessage(ctx, chatID, texts.Success(result.Message))
	}
	return s.sendMessage(ctx, chatID, texts.Failure(result.Message))
}

func categoryKeyboard(prefix, suffix string) *domain.InlineKeyboard {
	buttons := make([]domain.InlineKeyboardButton, 0, len(domain.AllCategories()))
	for _, c := range domain.AllCategories() {
		buttons = append(buttons, domain.InlineKeyboardButton{
			Text:         c.Label(),
			CallbackData: prefix + c.String() + suffix,
		})
	}
	return domain.NewInlineKeyboard(2, buttons...)
}
