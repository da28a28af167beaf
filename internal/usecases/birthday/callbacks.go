package birthday

import (
	"context"
	"strings"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

func (s *Service) onCategoryChosen(ctx context.Context, user *domain.User, msg *domain.Message, key string) error {
	conv, ok := s.expectState(ctx, user, domain.StateAwaitingCategory)
	if !ok {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.AddFlowExpired)
	}

	c, valid := domain.ParseCategory(key)
	if !valid {
		s.Log.Warn("invalid category in callback", "category", key, "user_id", user.ID)
		return nil
	}

	conv.Category = c
	conv.State = domain.StateAwaitingImage
	if err := s.saveConversation(ctx, user, conv); err != nil {
		s.Log.Error("failed to save conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	kb := domain.NewInlineKeyboard(2,
		domain.InlineKeyboardButton{Text: texts.ButtonAddPhoto, CallbackData: cbPhotoAdd},
		domain.InlineKeyboardButton{Text: texts.ButtonSkipPhoto, CallbackData: cbPhotoSkip},
	)
	return s.editMessage(ctx, msg, texts.FormatCategoryChosen(c), kb)
}

func (s *Service) onPhotoChoice(ctx context.Context, user *domain.User, msg *domain.Message, add bool) error {
	conv, ok := s.expectState(ctx, user, domain.StateAwaitingImage)
	if !ok {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.AddFlowExpired)
	}
	if add {
		return s.editMessage(ctx, msg, texts.AddFlowSendPhoto, nil)
	}
	conv.ImageURL = nil
	return s.askNotes(ctx, user, conv, msg)
}

func (s *Service) onNotesChoice(ctx context.Context, user *domain.User, msg *domain.Message, add bool) error {
	conv, ok := s.expectState(ctx, user, domain.StateAwaitingNotes)
	if !ok {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.AddFlowExpired)
	}
	if add {
		return s.editMessage(ctx, msg, texts.AddFlowSendNotes, nil)
	}
	conv.Notes = nil
	return s.finishAddFlow(ctx, user, conv)
}

func (s *Service) onViewCategory(ctx context.Context, user *domain.User, msg *domain.Message, key string) error {
	c, ok := domain.ParseCategory(key)
	if !ok {
		s.Log.Warn("invalid category in callback", "category", key, "user_id", user.ID)
		return nil
	}

	records, err := s.BirthdaysByCategory(ctx, user.ID, c.String())
	if err != nil {
		s.Log.Error("failed to get birthdays by category", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	today := s.localToday(user)
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, texts.BirthdayLine(r, ageOf(r, today)))
	}
	return s.editMessage(ctx, msg, texts.FormatCategoryList(c, lines), nil)
}

// onUpdateField upd:<field>:<id>
func (s *Service) onUpdateField(ctx context.Context, user *domain.User, msg *domain.Message, payload string) error {
	field, id, ok := strings.Cut(payload, ":")
	if !ok {
		return nil
	}

	target, err := s.findOwnedBirthday(ctx, user.ID, id)
	if err != nil {
		if isNotFound(err) {
			return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure("Birthday not found"))
		}
		s.Log.Error("failed to load birthday for update", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	var (
		state  domain.ConversationState
		prompt string
	)
	switch field {
	case "date":
		state, prompt = domain.StateAwaitingUpdateDate, texts.UpdateSendDate
	case "photo":
		state, prompt = domain.StateAwaitingUpdateImage, texts.UpdateSendPhoto
	case "notes":
		state, prompt = domain.StateAwaitingUpdateNotes, texts.UpdateSendNotes
	case "category":
		return s.editMessage(ctx, msg, texts.UpdateSelectCategory, categoryKeyboard(cbSetCategory, ":"+id))
	default:
		s.Log.Warn("unknown update field", "field", field, "user_id", user.ID)
		return nil
	}

	conv := &domain.Conversation{State: state, Name: target.Name, TargetID: target.ID}
	if err := s.saveConversation(ctx, user, conv); err != nil {
		s.Log.Error("failed to save conversation", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	return s.editMessage(ctx, msg, prompt, nil)
}

// onSetCategory setcat:<category>:<id>
func (s *Service) onSetCategory(ctx context.Context, user *domain.User, msg *domain.Message, payload string) error {
	key, id, ok := strings.Cut(payload, ":")
	if !ok {
		return nil
	}

	target, err := s.findOwnedBirthday(ctx, user.ID, id)
	if err != nil {
		if isNotFound(err) {
			return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure("Birthday not found"))
		}
		s.Log.Error("failed to load birthday for update", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	result := s.UpdateBirthday(ctx, user.ID, target.Name, domain.BirthdayPatch{Category: &key})
	text := texts.Failure(result.Message)
	if result.Success {
		text = texts.Success(result.Message)
	}
	return s.editMessage(ctx, msg, text, nil)
}

// expectState диалог в состоянии want; иначе кнопка устарела
func (s *Service) expectState(ctx context.Context, user *domain.User, want domain.ConversationState) (*domain.Conversation, bool) {
	conv, err := s.loadConversation(ctx, user)
	if err != nil {
		s.Log.Error("failed to load conversation", "error", err, "user_id", user.ID)
		return nil, false
	}
	return conv, conv.State == want
}
