package birthdayRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

type birthdayColumns struct {
	TableName string
	ID        string
	UserID    string
	Name      string
	BirthDate string
	Category  string
	ImageURL  string
	Notes     string
	CreatedAt string
	UpdatedAt string
	IsDeleted string
	DeletedAt string
}

type Repository struct {
	db persistence.Persistence
	// transactor nil, если репозиторий уже привязан к транзакции
	transactor persistence.Transactor
	Log        *slog.Logger
	columns    birthdayColumns
}

// New создаёт репозиторий записей о днях рождения
func New(db persistence.Persistence, transactor persistence.Transactor, log *slog.Logger) ports.IBirthdayRepo {
	cols := birthdayColumns{
		TableName: "birthdays",
		ID:        "id",
		UserID:    "user_id",
		Name:      "name",
		BirthDate: "birth_date",
		Category:  "category",
		ImageURL:  "image_url",
		Notes:     "notes",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
		IsDeleted: "is_deleted",
		DeletedAt: "deleted_at",
	}
	return &Repository{
		db:         db,
		transactor: transactor,
		Log:        log,
		columns:    cols,
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.Name,
		r.columns.BirthDate,
		r.columns.Category,
		r.columns.ImageURL,
		r.columns.Notes,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.IsDeleted,
		r.columns.DeletedAt)
}

// GetByUser записи пользователя по дате рождения
func (r *Repository) GetByUser(ctx context.Context, userID int64, includeDeleted bool) ([]*domain.Birthday, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID)
	if !includeDeleted {
		query += fmt.Sprintf(` AND NOT %s`, r.columns.IsDeleted)
	}
	query += fmt.Sprintf(` ORDER BY %s, %s`, r.columns.BirthDate, r.columns.CreatedAt)

	var birthdays []*domain.Birthday
	if err := r.db.Select(ctx, &birthdays, query, userID); err != nil {
		r.Log.Error("failed to get birthdays by user", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get birthdays by user: %w", err)
	}
	return birthdays, nil
}

// GetAll все записи по времени создания
func (r *Repository) GetAll(ctx context.Context, includeDeleted bool) ([]*domain.Birthday, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, r.allColumns(), r.columns.TableName)
	if !includeDeleted {
		query += fmt.Sprintf(` WHERE NOT %s`, r.columns.IsDeleted)
	}
	query += fmt.Sprintf(` ORDER BY %s`, r.columns.CreatedAt)

	var birthdays []*domain.Birthday
	if err := r.db.Select(ctx, &birthdays, query); err != nil {
		r.Log.Error("failed to get all birthdays", "error", err)
		return nil, fmt.Errorf("failed to get all birthdays: %w", err)
	}
	return birthdays, nil
}

func (r *Repository) FindActiveByName(ctx context.Context, userID int64, name string) (*domain.Birthday, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND lower(%s) = lower($2) AND NOT %s LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.Name,
		r.columns.IsDeleted)
	return r.findOne(ctx, query, userID, name)
}

// FindDeletedByName последняя удалённая запись с таким именем
func (r *Repository) FindDeletedByName(ctx context.Context, userID int64, name string) (*domain.Birthday, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND lower(%s) = lower($2) AND %s
		ORDER BY %s DESC NULLS LAST LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.Name,
		r.columns.IsDeleted,
		r.columns.DeletedAt)
	return r.findOne(ctx, query, userID, name)
}

func (r *Repository) findOne(ctx context.Context, query string, userID int64, name string) (*domain.Birthday, error) {
	var birthday domain.Birthday
	err := r.db.Get(ctx, &birthday, query, userID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to find birthday by name", "error", err, "user_id", userID, "name", name)
		return nil, fmt.Errorf("failed to find birthday by name: %w", err)
	}
	return &birthday, nil
}

func (r *Repository) Create(ctx context.Context, b *domain.Birthday) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.Name,
		b.BirthDate,
		b.Category,
		b.ImageURL,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
		b.IsDeleted,
		b.DeletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("birthday %q: %w", b.Name, domain.ErrDuplicateBirthday)
		}
		r.Log.Error("failed to create birthday", "error", err, "user_id", b.UserID, "birthday_id", b.ID)
		return fmt.Errorf("failed to create birthday: %w", err)
	}

	r.Log.Debug("birthday created", "birthday_id", b.ID, "user_id", b.UserID)
	return nil
}

// Save перезаписывает изменяемые поля (last-write-wins)
func (r *Repository) Save(ctx context.Context, b *domain.Birthday) error {
	query := fmt.Sprintf(`UPDATE %s SET
		%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		r.columns.TableName,
		r.columns.Name,
		r.columns.BirthDate,
		r.columns.Category,
		r.columns.ImageURL,
		r.columns.Notes,
		r.columns.UpdatedAt,
		r.columns.IsDeleted,
		r.columns.DeletedAt,
		r.columns.ID)

	affected, err := r.db.ExecWithResult(ctx, query,
		b.ID,
		b.Name,
		b.BirthDate,
		b.Category,
		b.ImageURL,
		b.Notes,
		b.UpdatedAt,
		b.IsDeleted,
		b.DeletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("birthday %q: %w", b.Name, domain.ErrDuplicateBirthday)
		}
		r.Log.Error("failed to save birthday", "error", err, "birthday_id", b.ID)
		return fmt.Errorf("failed to save birthday: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("birthday %s: %w", b.ID, domain.ErrBirthdayNotFound)
	}
	return nil
}

// WithNameLock берёт транзакционную advisory-блокировку по (user_id, lower(name)).
// Блокировка снимается при завершении транзакции.
func (r *Repository) WithNameLock(ctx context.Context, userID int64, name string, fn func(context.Context, ports.IBirthdayRepo) error) error {
	if r.transactor == nil {
		if err := r.lockName(ctx, r.db, userID, name); err != nil {
			return err
		}
		return fn(ctx, r)
	}

	return r.transactor.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := r.lockName(ctx, tx, userID, name); err != nil {
			return err
		}
		return fn(ctx, r.bound(tx))
	})
}

func (r *Repository) lockName(ctx context.Context, db persistence.Persistence, userID int64, name string) error {
	key := fmt.Sprintf("%d:%s", userID, strings.ToLower(strings.TrimSpace(name)))
	if err := db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		r.Log.Error("failed to acquire name lock", "error", err, "user_id", userID)
		return fmt.Errorf("failed to acquire name lock: %w", err)
	}
	return nil
}

// bound копия репозитория, работающая внутри транзакции
func (r *Repository) bound(tx persistence.Transaction) *Repository {
	return &Repository{
		db:      tx,
		Log:     r.Log,
		columns: r.columns,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
