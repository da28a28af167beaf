package service

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IBotService интерфейс бизнес-логики бота
type IBotService interface {
	GetOrCreateUser(ctx context.Context, tgUser *domain.TelegramUser, chat *domain.Chat) (*domain.User, error)
	HandleCommand(ctx context.Context, user *domain.User, command string, args string) error
	HandleText(ctx context.Context, user *domain.User, text string) error
	HandleCallback(ctx context.Context, user *domain.User, query *domain.CallbackQuery) error
}
