package birthday

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExport(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	username := "alice_tg"
	_, err := svc.GetOrCreateUser(ctx, &domain.TelegramUser{ID: 1, FirstName: "Alice", Username: &username}, &domain.Chat{ID: 1})
	require.NoError(t, err)

	res := svc.AddBirthday(ctx, 1, "Mom", "1960-03-08", "family", nil, strPtr("flowers, not chocolate"))
	require.True(t, res.Success)
	mustAdd(t, svc, 1, "Boss", "1970-01-01", "work")
	require.True(t, svc.DeleteBirthday(ctx, 1, "Boss").Success)
	// пользователь без username
	mustAdd(t, svc, 2, "Pal", "1991-07-07", "friend")
}

func TestWriteExportCSV(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedExport(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteExportCSV(context.Background(), &buf, false))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])

	byName := make(map[string][]string)
	for _, r := range rows[1:] {
		byName[r[3]] = r
	}
	require.Contains(t, byName, "Mom")
	mom := byName["Mom"]
	assert.Equal(t, "1", mom[1])
	assert.Equal(t, "alice_tg", mom[2])
	assert.Equal(t, "1960-03-08", mom[4])
	assert.Equal(t, domain.CategoryFamily.Label(), mom[5])
	assert.Equal(t, "N/A", mom[6])
	assert.Equal(t, "flowers, not chocolate", mom[7])
	assert.Equal(t, "No", mom[9])
	assert.Equal(t, "N/A", mom[10])

	assert.Equal(t, "N/A", byName["Pal"][2])
	assert.NotContains(t, byName, "Boss")
}

func TestWriteExportCSV_IncludeDeleted(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedExport(t, svc)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteExportCSV(context.Background(), &buf, true))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows[1:] {
		if r[3] == "Boss" {
			assert.Equal(t, "Yes", r[9])
			assert.Equal(t, "2024-09-27 12:00:00", r[10])
		}
	}
}

func TestBuildAndArchiveExport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	seedExport(t, svc)

	export, err := svc.BuildExport(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "birthdays_export_complete_20240927_120000.csv", export.Filename)
	assert.Equal(t, 3, export.Rows)

	_, err = svc.ArchiveExport(ctx, export)
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
	_, err = svc.ListExports(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)

	storage := newFakeStorage()
	svc.Storage = storage

	link, err := svc.ArchiveExport(ctx, export)
	require.NoError(t, err)
	assert.Contains(t, link, "exports/"+export.Filename)
	assert.Equal(t, export.Data, storage.files["exports/"+export.Filename])

	names, err := svc.ListExports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{export.Filename}, names)

	data, err := svc.GetExport(ctx, export.Filename)
	require.NoError(t, err)
	assert.Equal(t, export.Data, data)

	for _, bad := range []string{"", "../secret.csv", "exports/x.csv", "dump.sql"} {
		_, err := svc.GetExport(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

func TestExportCallbackSendsDocument(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	admin := mustUser(t, svc, adminID)

	require.NoError(t, svc.HandleCallback(ctx, admin, callback(admin, "export:active")))
	assert.Equal(t, "📝 No data to export.", tg.lastMessage(t).Text)

	seedExport(t, svc)
	svc.Storage = newFakeStorage()

	require.NoError(t, svc.HandleCallback(ctx, admin, callback(admin, "export:active")))
	require.Len(t, tg.documents, 1)
	doc := tg.documents[0]
	assert.Equal(t, adminID, doc.ChatID)
	assert.True(t, strings.HasPrefix(doc.Filename, "birthdays_export_active_"))
	assert.Contains(t, doc.Caption, "Archived copy")
	assert.Contains(t, string(doc.Data), "Mom")
}
