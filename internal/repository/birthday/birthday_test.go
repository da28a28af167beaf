package birthdayRepo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	ports "github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var birthdayRowColumns = []string{
	"id", "user_id", "name", "birth_date", "category", "image_url", "notes",
	"created_at", "updated_at", "is_deleted", "deleted_at",
}

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := pg.NewDB(sqlx.NewDb(sqlDB, "sqlmock"))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(db, db, log).(*Repository), mock
}

func TestGetByUser_ActiveOnly(t *testing.T) {
	repo, mock := newTestRepo(t)
	id := uuid.New()
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(birthdayRowColumns).
		AddRow(id.String(), int64(42), "Alice", time.Date(1990, 9, 27, 0, 0, 0, 0, time.UTC), "friend",
			nil, "likes tea", now, now, false, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM birthdays WHERE user_id = $1 AND NOT is_deleted ORDER BY birth_date")).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	got, err := repo.GetByUser(context.Background(), 42, false)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, domain.CategoryFriend, got[0].Category)
	assert.Nil(t, got[0].ImageURL)
	require.NotNil(t, got[0].Notes)
	assert.Equal(t, "likes tea", *got[0].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_IncludeDeleted(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT .* FROM birthdays ORDER BY created_at`).
		WillReturnRows(sqlmock.NewRows(birthdayRowColumns))

	got, err := repo.GetAll(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByName_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("lower(name) = lower($2) AND NOT is_deleted LIMIT 1")).
		WithArgs(int64(42), "john").
		WillReturnRows(sqlmock.NewRows(birthdayRowColumns))

	got, err := repo.FindActiveByName(context.Background(), 42, "  john ")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDeletedByName_LatestFirst(t *testing.T) {
	repo, mock := newTestRepo(t)
	deletedAt := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(birthdayRowColumns).
		AddRow(uuid.New().String(), int64(42), "John", time.Date(1995, 9, 27, 0, 0, 0, 0, time.UTC), "family",
			nil, nil, deletedAt, deletedAt, true, deletedAt)

	mock.ExpectQuery(`AND is_deleted\s+ORDER BY deleted_at DESC NULLS LAST LIMIT 1`).
		WithArgs(int64(42), "John").
		WillReturnRows(rows)

	got, err := repo.FindDeletedByName(context.Background(), 42, "John")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, deletedAt.Equal(*got.DeletedAt))
}

func TestCreate_UniqueViolationIsDuplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO birthdays")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Birthday{ID: uuid.New(), UserID: 42, Name: "John"})
	assert.ErrorIs(t, err, domain.ErrDuplicateBirthday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OtherErrorIsWrapped(t *testing.T) {
	repo, mock := newTestRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO birthdays")).WillReturnError(boom)

	err := repo.Create(context.Background(), &domain.Birthday{ID: uuid.New(), UserID: 42, Name: "John"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicateBirthday)
}

func TestSave_MissingRow(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE birthdays SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &domain.Birthday{ID: uuid.New(), Name: "John"})
	assert.ErrorIs(t, err, domain.ErrBirthdayNotFound)
}

func TestWithNameLock_CommitsOnSuccess(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtextextended($1, 0))")).
		WithArgs("42:john").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("AND NOT is_deleted LIMIT 1")).
		WithArgs(int64(42), "John").
		WillReturnRows(sqlmock.NewRows(birthdayRowColumns))
	mock.ExpectCommit()

	err := repo.WithNameLock(context.Background(), 42, " John ", func(ctx context.Context, r ports.IBirthdayRepo) error {
		existing, err := r.FindActiveByName(ctx, 42, "John")
		require.NoError(t, err)
		assert.Nil(t, existing)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithNameLock_RollsBackOnError(t *testing.T) {
	repo, mock := newTestRepo(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.WithNameLock(context.Background(), 42, "John", func(context.Context, ports.IBirthdayRepo) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
