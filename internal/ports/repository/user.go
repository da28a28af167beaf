package repository

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IUserRepo интерфейс для работы с пользователями Telegram
type IUserRepo interface {
	// GetOrCreate атомарно создаёт пользователя или обновляет chat_id/username/first_name
	GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error)
	// GetByID возвращает domain.ErrUserNotFound, если пользователя нет или он удалён
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetActiveUsers(ctx context.Context) ([]*domain.User, error)
	UpdateTimezone(ctx context.Context, id int64, timezone string) error
	Count(ctx context.Context) (int, error)
	EnsureSuperadmin(ctx context.Context, id int64) error
}
