package birthday

import (
	"context"
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBirthday_CreatesTitleCasedRecord(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)

	result := svc.AddBirthday(ctx, 1, "  john smith ", "1995-09-27", "FAMILY", nil, nil)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Birthday added for John Smith (1995-09-27) - Category: "+domain.CategoryFamily.Label(), result.Message)

	records, err := store.GetByUser(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "John Smith", records[0].Name)
	assert.Equal(t, domain.CategoryFamily, records[0].Category)
}

func TestAddBirthday_DefaultsToOther(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustAdd(t, svc, 1, "Bob", "1990-01-15", "")
	assert.Equal(t, domain.CategoryOther, b.Category)
}

func TestAddBirthday_CreatesUnknownUser(t *testing.T) {
	svc, store, _ := newTestService(t)
	mustAdd(t, svc, 42, "Bob", "1990-01-15", "work")

	u, err := store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimezone, u.Timezone)
}

func TestAddBirthday_Duplicate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	result := svc.AddBirthday(ctx, 1, "JOHN", "2000-01-01", "work", nil, nil)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, domain.ErrDuplicateBirthday)
	assert.Equal(t, "Birthday for JOHN already exists", result.Message)

	records, err := store.GetByUser(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// у другого пользователя то же имя допустимо
	mustAdd(t, svc, 2, "John", "1995-09-27", "family")
}

func TestAddBirthday_Validation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name, date, category string
		image                *string
		message              string
	}{
		{"J0hn", "1995-09-27", "family", nil, msgInvalidName},
		{"", "1995-09-27", "family", nil, msgInvalidName},
		{"John", "1995-9-27", "family", nil, msgInvalidDate},
		{"John", "2023-02-29", "family", nil, msgInvalidDate},
		{"John", "1899-12-31", "family", nil, msgInvalidDate},
		{"John", "1995-09-27", "boss", nil, msgInvalidCategory()},
		{"John", "1995-09-27", "family", strPtr("ftp://example.com/a.jpg"), msgInvalidImageURL},
		{"John", "1995-09-27", "family", strPtr("https://example.com/page"), msgInvalidImageURL},
	}

	for _, tc := range cases {
		result := svc.AddBirthday(ctx, 1, tc.name, tc.date, tc.category, tc.image, nil)
		assert.False(t, result.Success, "%+v", tc)
		assert.ErrorIs(t, result.Err, domain.ErrValidation)
		assert.Equal(t, tc.message, result.Message)
	}

	records, err := store.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddBirthday_SanitizesNotes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result := svc.AddBirthday(ctx, 1, "Ann", "1990-01-15", "friend", nil, strPtr(" <b>likes</b> tea &amp; cake "))
	require.True(t, result.Success)
	require.NotNil(t, result.Birthday.Notes)
	assert.Equal(t, "likes tea & cake", *result.Birthday.Notes)

	result = svc.AddBirthday(ctx, 1, "Ben", "1990-01-15", "friend", strPtr("  "), strPtr("   "))
	require.True(t, result.Success)
	assert.Nil(t, result.Birthday.Notes)
	assert.Nil(t, result.Birthday.ImageURL)
}

func TestAddBirthday_RestoresDeletedWithNewData(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	original := mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	require.True(t, svc.DeleteBirthday(ctx, 1, "john").Success)

	result := svc.AddBirthday(ctx, 1, "John", "2000-01-02", "work", nil, nil)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Birthday restored for John (2000-01-02)", result.Message)
	assert.Equal(t, original.ID, result.Birthday.ID)

	records, err := store.GetByUser(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsDeleted)
	assert.Nil(t, records[0].DeletedAt)
	assert.Equal(t, domain.CategoryWork, records[0].Category)
	assert.Equal(t, "2000-01-02", records[0].DateString())
}

func TestDeleteBirthday(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	result := svc.DeleteBirthday(ctx, 1, "John")
	require.True(t, result.Success)
	assert.Equal(t, "Birthday for John deleted", result.Message)

	active, err := store.GetByUser(ctx, 1, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	result = svc.DeleteBirthday(ctx, 1, "John")
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, domain.ErrBirthdayNotFound)
	assert.Equal(t, "Birthday for John not found", result.Message)
}

func TestDeleteBirthday_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	result := svc.DeleteBirthday(context.Background(), 77, "John")
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, domain.ErrUserNotFound)
}

func TestRestoreBirthday(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)

	result := svc.RestoreBirthday(ctx, 1, "John")
	assert.ErrorIs(t, result.Err, domain.ErrDeletedBirthdayNotFound)
	assert.Equal(t, "No deleted birthday found for John", result.Message)

	mustAdd(t, svc, 1, "John", "1995-09-27", "family")
	require.True(t, svc.DeleteBirthday(ctx, 1, "John").Success)

	result = svc.RestoreBirthday(ctx, 1, "john")
	require.True(t, result.Success)
	assert.Equal(t, "Birthday for john restored successfully", result.Message)

	list, err := svc.ListBirthdays(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1995-09-27", list[0].DateString())
}

func TestRestoreBirthday_ActiveExists(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	deletedAt := testNow.Add(-time.Hour)
	require.NoError(t, store.Create(ctx, &domain.Birthday{
		ID:        uuid.New(),
		UserID:    1,
		Name:      "John",
		BirthDate: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  domain.CategoryOther,
		IsDeleted: true,
		DeletedAt: &deletedAt,
	}))

	result := svc.RestoreBirthday(ctx, 1, "John")
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, domain.ErrDuplicateBirthday)
	assert.Equal(t, "Birthday for John already exists", result.Message)
}

func TestUpdateBirthday(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	result := svc.UpdateBirthday(ctx, 1, "john", domain.BirthdayPatch{
		BirthDate: strPtr("1996-01-02"),
		Category:  strPtr("work"),
	})
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Birthday for john updated: date to 1996-01-02, category to "+domain.CategoryWork.Label(), result.Message)

	result = svc.UpdateBirthday(ctx, 1, "John", domain.BirthdayPatch{ImageURL: strPtr("https://i.imgur.com/x.png")})
	require.True(t, result.Success)
	require.NotNil(t, result.Birthday.ImageURL)

	result = svc.UpdateBirthday(ctx, 1, "John", domain.BirthdayPatch{ImageURL: strPtr("")})
	require.True(t, result.Success)
	assert.Nil(t, result.Birthday.ImageURL)
	assert.Equal(t, "Birthday for John updated: image", result.Message)

	result = svc.UpdateBirthday(ctx, 1, "John", domain.BirthdayPatch{})
	require.True(t, result.Success)
	assert.Equal(t, "Birthday for John updated: no changes", result.Message)
}

func TestUpdateBirthday_InvalidFieldChangesNothing(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "John", "1995-09-27", "family")

	result := svc.UpdateBirthday(ctx, 1, "John", domain.BirthdayPatch{
		BirthDate: strPtr("1996-01-02"),
		Category:  strPtr("boss"),
	})
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, domain.ErrValidation)

	list, err := svc.ListBirthdays(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1995-09-27", list[0].DateString())
	assert.Equal(t, domain.CategoryFamily, list[0].Category)

	result = svc.UpdateBirthday(ctx, 1, "Nobody", domain.BirthdayPatch{Category: strPtr("work")})
	assert.ErrorIs(t, result.Err, domain.ErrBirthdayNotFound)
}

func TestQueries(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustAdd(t, svc, 1, "Late", "1990-09-30", "work")
	mustAdd(t, svc, 1, "Early", "1980-09-02", "friend")
	mustAdd(t, svc, 1, "Winter", "1985-12-31", "work")

	work, err := svc.BirthdaysByCategory(ctx, 1, "WORK")
	require.NoError(t, err)
	assert.Len(t, work, 2)

	unknown, err := svc.BirthdaysByCategory(ctx, 1, "boss")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	september, err := svc.BirthdaysByMonth(ctx, 1, 9)
	require.NoError(t, err)
	require.Len(t, september, 2)
	assert.Equal(t, "Early", september[0].Name)
	assert.Equal(t, "Late", september[1].Name)

	none, err := svc.BirthdaysByMonth(ctx, 1, 13)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetTimezone(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)

	result := svc.SetTimezone(ctx, 1, "Mars/Olympus")
	assert.ErrorIs(t, result.Err, domain.ErrValidation)

	result = svc.SetTimezone(ctx, 1, "Asia/Tokyo")
	require.True(t, result.Success)

	u, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", u.Timezone)
}
