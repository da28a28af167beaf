package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/timezone"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func addUser(t *testing.T, store *inmemory.Store, id int64, tz string) {
	t.Helper()
	_, err := store.GetOrCreate(context.Background(), &domain.User{ID: id, ChatID: id, Timezone: tz})
	require.NoError(t, err)
}

func addBirthday(t *testing.T, store *inmemory.Store, userID int64, name string, y int, m time.Month, d int) *domain.Birthday {
	t.Helper()
	b := &domain.Birthday{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		BirthDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Category:  domain.CategoryFamily,
	}
	require.NoError(t, store.Create(context.Background(), b))
	return b
}

func newMatcher(store *inmemory.Store) *Matcher {
	return NewMatcher(store, store, timezone.NewResolver(nil), 2, testLogger())
}

func TestMatchToday(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")
	addUser(t, store, 2, "UTC")
	addUser(t, store, 3, "UTC")

	addBirthday(t, store, 1, "Alice", 1990, 9, 27)
	addBirthday(t, store, 1, "Bob", 1985, 12, 31)
	addBirthday(t, store, 3, "Carol", 2000, 9, 27)

	now := time.Date(2024, 9, 27, 12, 0, 0, 0, time.UTC)
	batch, err := newMatcher(store).MatchToday(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Users)
	assert.Equal(t, 0, batch.Failed)
	// пользователь 2 без совпадений не попадает в результат
	require.Len(t, batch.Matches, 2)

	assert.Equal(t, int64(1), batch.Matches[0].User.ID)
	require.Len(t, batch.Matches[0].Matches, 1)
	assert.Equal(t, "Alice", batch.Matches[0].Matches[0].Record.Name)
	assert.Equal(t, 34, batch.Matches[0].Matches[0].Age)

	assert.Equal(t, int64(3), batch.Matches[1].User.ID)
	assert.Equal(t, 24, batch.Matches[1].Matches[0].Age)
}

func TestMatchToday_SkipsDeletedRecordsAndUsers(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")
	addUser(t, store, 2, "UTC")

	john := addBirthday(t, store, 1, "John", 1995, 9, 27)
	john.SoftDelete(time.Now())
	require.NoError(t, store.Save(context.Background(), john))

	addBirthday(t, store, 2, "Jane", 1995, 9, 27)
	require.NoError(t, store.DeleteUser(context.Background(), 2))

	batch, err := newMatcher(store).MatchToday(context.Background(), time.Date(2024, 9, 27, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Users)
	assert.Empty(t, batch.Matches)
}

func TestMatchToday_UsesLocalDate(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "Asia/Tokyo")
	addUser(t, store, 2, "UTC")
	addUser(t, store, 3, "Not/AZone")

	addBirthday(t, store, 1, "Alice", 1990, 9, 28)
	addBirthday(t, store, 2, "Alice", 1990, 9, 28)
	addBirthday(t, store, 3, "Alice", 1990, 9, 27)

	// 2024-09-27 20:00 UTC = 2024-09-28 05:00 в Токио
	now := time.Date(2024, 9, 27, 20, 0, 0, 0, time.UTC)
	batch, err := newMatcher(store).MatchToday(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, batch.Matches, 2)
	assert.Equal(t, int64(1), batch.Matches[0].User.ID)
	assert.Equal(t, time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC), batch.Matches[0].LocalDate)
	// неизвестная зона - UTC
	assert.Equal(t, int64(3), batch.Matches[1].User.ID)
}

func TestMatchUpcoming(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")

	addBirthday(t, store, 1, "Today", 1990, 9, 27)
	addBirthday(t, store, 1, "InThree", 1990, 9, 30)
	addBirthday(t, store, 1, "InOne", 2000, 9, 28)
	addBirthday(t, store, 1, "InFour", 1990, 10, 1)

	batch, err := newMatcher(store).MatchUpcoming(context.Background(), time.Date(2024, 9, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, batch.Matches, 1)

	matches := batch.Matches[0].Matches
	require.Len(t, matches, 2)
	assert.Equal(t, "InOne", matches[0].Record.Name)
	assert.Equal(t, 1, matches[0].DaysAhead)
	assert.Equal(t, 24, matches[0].Age)
	assert.Equal(t, "InThree", matches[1].Record.Name)
	assert.Equal(t, 3, matches[1].DaysAhead)
	assert.Equal(t, 34, matches[1].Age)
}

func TestMatchUpcoming_YearRollover(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")
	addBirthday(t, store, 1, "NewYear", 1990, 1, 2)

	batch, err := newMatcher(store).MatchUpcoming(context.Background(), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, batch.Matches, 1)
	assert.Equal(t, 2, batch.Matches[0].Matches[0].DaysAhead)
	assert.Equal(t, 35, batch.Matches[0].Matches[0].Age)
}

type failingStore struct {
	*inmemory.Store
	failFor int64
}

func (s *failingStore) GetByUser(ctx context.Context, userID int64, includeDeleted bool) ([]*domain.Birthday, error) {
	if userID == s.failFor {
		return nil, errors.New("connection reset")
	}
	return s.Store.GetByUser(ctx, userID, includeDeleted)
}

func TestMatch_PerUserFailureIsIsolated(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")
	addUser(t, store, 2, "UTC")
	addBirthday(t, store, 1, "Alice", 1990, 9, 27)
	addBirthday(t, store, 2, "Bob", 1990, 9, 27)

	fs := &failingStore{Store: store, failFor: 1}
	m := NewMatcher(store, fs, timezone.NewResolver(nil), 1, testLogger())

	batch, err := m.MatchToday(context.Background(), time.Date(2024, 9, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Users)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Matches, 1)
	assert.Equal(t, int64(2), batch.Matches[0].User.ID)
}

func TestMatch_CancelledContext(t *testing.T) {
	store := inmemory.NewStore()
	addUser(t, store, 1, "UTC")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newMatcher(store).MatchToday(ctx, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
