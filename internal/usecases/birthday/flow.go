package birthday

import (
	"context"
	"errors"
	"strings"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/validator"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

const (
	replySkip   = "skip"
	replyRemove = "remove"
)

// startAddFlow /add: имя и дата -> категория -> фото -> заметки
func (s *Service) startAddFlow(ctx context.Context, user *domain.User) error {
	if err := s.saveConversation(ctx, user, &domain.Conversation{State: domain.StateAwaitingDetails}); err != nil {
		s.Log.Error("failed to start add flow", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.AddFlowStart)
}

// continueFlow текстовый ответ на текущий шаг. При ошибке валидации шаг не меняется.
func (s *Service) continueFlow(ctx context.Context, user *domain.User, conv *domain.Conversation, text string) error {
	switch conv.State {
	case domain.StateAwaitingDetails:
		return s.onDetails(ctx, user, conv, text)
	case domain.StateAwaitingImage:
		return s.onImage(ctx, user, conv, text)
	case domain.StateAwaitingNotes:
		var notes *string
		if !strings.EqualFold(text, replySkip) {
			notes = &text
		}
		conv.Notes = notes
		return s.finishAddFlow(ctx, user, conv)
	case domain.StateAwaitingUpdateDate:
		return s.applyUpdate(ctx, user, conv, domain.BirthdayPatch{BirthDate: &text})
	case domain.StateAwaitingUpdateImage:
		return s.applyUpdate(ctx, user, conv, domain.BirthdayPatch{ImageURL: removable(text)})
	case domain.StateAwaitingUpdateNotes:
		return s.applyUpdate(ctx, user, conv, domain.BirthdayPatch{Notes: removable(text)})
	default:
		return s.sendMessage(ctx, user.ReplyChatID(), texts.UseCommands)
	}
}

func (s *Service) onDetails(ctx context.Context, user *domain.User, conv *domain.Conversation, text string) error {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.AddFlowBadFormat)
	}

	name := strings.Join(parts[:len(parts)-1], " ")
	dateStr := parts[len(parts)-1]
	if !validator.ValidateName(name) {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(msgInvalidName))
	}
	if _, err := validator.ParseDate(dateStr, s.now()); err != nil {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(msgInvalidDate))
	}

	conv.Name = name
	conv.DateStr = dateStr
	conv.State = domain.StateAwaitingCategory
	if err := s.saveConversation(ctx, user, conv); err != nil {
		s.Log.Error("failed to save conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	return s.sendMessageWithKeyboard(ctx, user.ReplyChatID(),
		texts.FormatAddFlowConfirm(name, dateStr), categoryKeyboard(cbCategory, ""))
}

func (s *Service) onImage(ctx context.Context, user *domain.User, conv *domain.Conversation, text string) error {
	if strings.EqualFold(text, replySkip) {
		conv.ImageURL = nil
	} else {
		if !validator.ValidateImageURL(text) {
			return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(msgInvalidImageURL))
		}
		conv.ImageURL = &text
	}
	return s.askNotes(ctx, user, conv, nil)
}

// askNotes переводит диалог на шаг заметок; msg != nil - заменить сообщение с кнопками
func (s *Service) askNotes(ctx context.Context, user *domain.User, conv *domain.Conversation, msg *domain.Message) error {
	conv.State = domain.StateAwaitingNotes
	if err := s.saveConversation(ctx, user, conv); err != nil {
		s.Log.Error("failed to save conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	kb := domain.NewInlineKeyboard(2,
		domain.InlineKeyboardButton{Text: texts.ButtonAddNotes, CallbackData: cbNotesAdd},
		domain.InlineKeyboardButton{Text: texts.ButtonSkipNotes, CallbackData: cbNotesSkip},
	)
	if msg != nil {
		return s.editMessage(ctx, msg, texts.AddFlowAskNotes, kb)
	}
	return s.sendMessageWithKeyboard(ctx, user.ReplyChatID(), texts.AddFlowAskNotes, kb)
}

// finishAddFlow сохраняет запись и завершает диалог независимо от результата
func (s *Service) finishAddFlow(ctx context.Context, user *domain.User, conv *domain.Conversation) error {
	result := s.AddBirthday(ctx, user.ID, conv.Name, conv.DateStr, conv.Category.String(), conv.ImageURL, conv.Notes)

	if err := s.clearConversation(ctx, user); err != nil {
		s.Log.Warn("failed to clear conversation", "error", err, "user_id", user.ID)
	}

	var imageURL, notes *string
	if result.Success && result.Birthday != nil {
		imageURL, notes = result.Birthday.ImageURL, result.Birthday.Notes
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatAddFinished(result, imageURL, notes))
}

// applyUpdate применяет правку к записи из диалога /update_birthday
func (s *Service) applyUpdate(ctx context.Context, user *domain.User, conv *domain.Conversation, patch domain.BirthdayPatch) error {
	target, err := s.findOwnedBirthday(ctx, user.ID, conv.TargetID.String())
	if err != nil {
		_ = s.clearConversation(ctx, user)
		if isNotFound(err) {
			return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(msgNotFound(conv.Name)))
		}
		s.Log.Error("failed to load birthday for update", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	result := s.UpdateBirthday(ctx, user.ID, target.Name, patch)
	if !result.Success && errors.Is(result.Err, domain.ErrValidation) {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(result.Message))
	}

	if err := s.clearConversation(ctx, user); err != nil {
		s.Log.Warn("failed to clear conversation", "error", err, "user_id", user.ID)
	}
	return s.sendResult(ctx, user.ReplyChatID(), result)
}

// removable "remove" превращается в пустую строку, которая удаляет значение
func removable(text string) *string {
	if strings.EqualFold(text, replyRemove) {
		empty := ""
		return &empty
	}
	return &text
}
