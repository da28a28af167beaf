package repository

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IBirthdayRepo интерфейс хранилища записей о днях рождения.
// Поиск по имени без учёта регистра; отсутствие записи - (nil, nil).
type IBirthdayRepo interface {
	GetByUser(ctx context.Context, userID int64, includeDeleted bool) ([]*domain.Birthday, error)
	GetAll(ctx context.Context, includeDeleted bool) ([]*domain.Birthday, error)
	FindActiveByName(ctx context.Context, userID int64, name string) (*domain.Birthday, error)
	FindDeletedByName(ctx context.Context, userID int64, name string) (*domain.Birthday, error)
	// Create возвращает domain.ErrDuplicateBirthday, если активная запись с таким именем уже есть
	Create(ctx context.Context, birthday *domain.Birthday) error
	Save(ctx context.Context, birthday *domain.Birthday) error

	// WithNameLock выполняет fn атомарно относительно других мутаций той же пары (user, имя).
	// Внутри fn нужно работать через переданный репозиторий.
	WithNameLock(ctx context.Context, userID int64, name string, fn func(context.Context, IBirthdayRepo) error) error
}
