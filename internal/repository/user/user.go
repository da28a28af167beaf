package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
)

type userColumns struct {
	TableName    string
	ID           string
	ChatID       string
	Username     string
	FirstName    string
	Timezone     string
	IsSuperadmin string
	IsDeleted    string
	DeletedAt    string
	CreatedAt    string
	UpdatedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
	now     func() time.Time
}

// New создаёт новый репозиторий для работы с пользователями
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	cols := userColumns{
		TableName:    "users",
		ID:           "id",
		ChatID:       "chat_id",
		Username:     "username",
		FirstName:    "first_name",
		Timezone:     "timezone",
		IsSuperadmin: "is_superadmin",
		IsDeleted:    "is_deleted",
		DeletedAt:    "deleted_at",
		CreatedAt:    "created_at",
		UpdatedAt:    "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
		now:     time.Now,
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.ChatID,
		r.columns.Username,
		r.columns.FirstName,
		r.columns.Timezone,
		r.columns.IsSuperadmin,
		r.columns.IsDeleted,
		r.columns.DeletedAt,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// GetOrCreate вставляет пользователя или обновляет контактные поля существующего одним запросом
func (r *Repository) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	timezone := user.Timezone
	if timezone == "" {
		timezone = domain.DefaultTimezone
	}
	now := r.now().UTC()

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
		RETURNING %s`,
		r.columns.TableName,
		r.columns.ID, r.columns.ChatID, r.columns.Username, r.columns.FirstName,
		r.columns.Timezone, r.columns.CreatedAt, r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.ChatID, r.columns.ChatID,
		r.columns.Username, r.columns.Username,
		r.columns.FirstName, r.columns.FirstName,
		r.columns.UpdatedAt, r.columns.UpdatedAt,
		r.allColumns())

	var result domain.User
	err := r.db.Get(ctx, &result, query,
		user.ID,
		user.ChatID,
		user.Username,
		user.FirstName,
		timezone,
		now)
	if err != nil {
		r.Log.Error("failed to upsert user", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.Log.Debug("user upserted", "user_id", result.ID)
	return &result, nil
}

// GetByID получает активного пользователя
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND NOT %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
		r.columns.IsDeleted)

	err := r.db.Get(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("user not found", "user_id", id)
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
		}
		r.Log.Error("failed to get user by id", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// GetActiveUsers пользователи без пометки удаления
func (r *Repository) GetActiveUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE NOT %s ORDER BY %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.IsDeleted,
		r.columns.ID)

	if err := r.db.Select(ctx, &users, query); err != nil {
		r.Log.Error("failed to get active users", "error", err)
		return nil, fmt.Errorf("failed to get active users: %w", err)
	}
	return users, nil
}

func (r *Repository) UpdateTimezone(ctx context.Context, id int64, timezone string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND NOT %s`,
		r.columns.TableName,
		r.columns.Timezone,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.IsDeleted)

	affected, err := r.db.ExecWithResult(ctx, query, id, timezone, r.now().UTC())
	if err != nil {
		r.Log.Error("failed to update timezone", "error", err, "user_id", id)
		return fmt.Errorf("failed to update timezone: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	return nil
}

// Count количество активных пользователей
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE NOT %s`,
		r.columns.TableName,
		r.columns.IsDeleted)

	if err := r.db.Get(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// EnsureSuperadmin делает id единственным суперадмином, создавая пользователя при необходимости
func (r *Repository) EnsureSuperadmin(ctx context.Context, id int64) error {
	now := r.now().UTC()

	upsert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $1, $2, TRUE, $3, $3)
		ON CONFLICT (%s) DO UPDATE SET %s = TRUE, %s = EXCLUDED.%s`,
		r.columns.TableName,
		r.columns.ID, r.columns.ChatID, r.columns.Timezone, r.columns.IsSuperadmin,
		r.columns.CreatedAt, r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.IsSuperadmin,
		r.columns.UpdatedAt, r.columns.UpdatedAt)
	if err := r.db.Exec(ctx, upsert, id, domain.DefaultTimezone, now); err != nil {
		r.Log.Error("failed to ensure superadmin", "error", err, "user_id", id)
		return fmt.Errorf("failed to ensure superadmin: %w", err)
	}

	revoke := fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = $2 WHERE %s <> $1 AND %s`,
		r.columns.TableName,
		r.columns.IsSuperadmin,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.IsSuperadmin)
	revoked, err := r.db.ExecWithResult(ctx, revoke, id, now)
	if err != nil {
		return fmt.Errorf("failed to revoke stale superadmins: %w", err)
	}

	r.Log.Info("superadmin ensured", "user_id", id, "revoked", revoked)
	return nil
}
