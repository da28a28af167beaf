package birthday

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

const (
	exportPrefix      = "exports/"
	exportContentType = "text/csv"
	exportTimeLayout  = "2006-01-02 15:04:05"
	notAvailable      = "N/A"
)

var exportHeader = []string{
	"ID", "User ID", "Username", "Birthday Name",
	"Birth Date", "Category", "Image URL", "Notes",
	"Created At", "Is Deleted", "Deleted At",
}

// Export готовый CSV-файл
type Export struct {
	Filename string
	Data     []byte
	Rows     int
}

// WriteExportCSV пишет все записи в CSV (по умолчанию только активные)
func (s *Service) WriteExportCSV(ctx context.Context, w io.Writer, includeDeleted bool) error {
	_, err := s.writeCSV(ctx, w, includeDeleted)
	return err
}

func (s *Service) writeCSV(ctx context.Context, w io.Writer, includeDeleted bool) (int, error) {
	records, err := s.BirthdayRepo.GetAll(ctx, includeDeleted)
	if err != nil {
		return 0, fmt.Errorf("failed to get birthdays for export: %w", err)
	}

	usernames := make(map[int64]string)
	username := func(userID int64) string {
		if name, ok := usernames[userID]; ok {
			return name
		}
		name := notAvailable
		user, err := s.UserRepo.GetByID(ctx, userID)
		switch {
		case err == nil:
			name = user.DisplayUsername()
		case !errors.Is(err, domain.ErrUserNotFound):
			s.Log.Warn("failed to get user for export", "error", err, "user_id", userID)
		}
		usernames[userID] = name
		return name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.ID.String(),
			strconv.FormatInt(r.UserID, 10),
			username(r.UserID),
			r.Name,
			r.DateString(),
			r.Category.Label(),
			orNA(r.ImageURL),
			orNA(r.Notes),
			r.CreatedAt.UTC().Format(exportTimeLayout),
			yesNo(r.IsDeleted),
			timeOrNA(r.DeletedAt),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(records), nil
}

// BuildExport формирует CSV в памяти с именем birthdays_export_{active|complete}_{YYYYmmdd_HHMMSS}.csv
func (s *Service) BuildExport(ctx context.Context, includeDeleted bool) (*Export, error) {
	var buf bytes.Buffer
	rows, err := s.writeCSV(ctx, &buf, includeDeleted)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("birthdays_export_%s_%s.csv", texts.ExportScope(includeDeleted), s.now().UTC().Format("20060102_150405"))
	return &Export{Filename: filename, Data: buf.Bytes(), Rows: rows}, nil
}

// ArchiveExport кладёт файл в S3 и возвращает presigned-ссылку
func (s *Service) ArchiveExport(ctx context.Context, export *Export) (string, error) {
	if s.Storage == nil {
		return "", domain.ErrStorageDisabled
	}

	key := exportPrefix + export.Filename
	if err := s.Storage.PutFile(ctx, key, export.Data, exportContentType); err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}

	link, err := s.Storage.GetPresignedURL(ctx, key, s.ExportLinkTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign export: %w", err)
	}
	return link, nil
}

// ListExports имена архивных экспортов
func (s *Service) ListExports(ctx context.Context) ([]string, error) {
	if s.Storage == nil {
		return nil, domain.ErrStorageDisabled
	}

	keys, err := s.Storage.ListFiles(ctx, exportPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, exportPrefix))
	}
	return names, nil
}

// GetExport содержимое архивного экспорта по имени файла
func (s *Service) GetExport(ctx context.Context, filename string) ([]byte, error) {
	if s.Storage == nil {
		return nil, domain.ErrStorageDisabled
	}
	if filename == "" || path.Base(filename) != filename || !strings.HasSuffix(filename, ".csv") {
		return nil, fmt.Errorf("%w: invalid export name %q", domain.ErrValidation, filename)
	}

	data, err := s.Storage.GetFile(ctx, exportPrefix+filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return data, nil
}

// sendExport отправляет CSV администратору; архивирование в S3 не обязательно
func (s *Service) sendExport(ctx context.Context, chatID int64, includeDeleted bool) error {
	export, err := s.BuildExport(ctx, includeDeleted)
	if err != nil {
		s.Log.Error("failed to build export", "error", err)
		return s.sendMessage(ctx, chatID, texts.AdminExportError)
	}
	if export.Rows == 0 {
		return s.sendMessage(ctx, chatID, texts.AdminNoExportData)
	}

	var link string
	if s.Storage != nil {
		link, err = s.ArchiveExport(ctx, export)
		if err != nil {
			s.Log.Warn("failed to archive export", "error", err, "filename", export.Filename)
			link = ""
		}
	}

	caption := texts.FormatExportCaption(includeDeleted, link)
	if err := s.TelegramClient.SendDocument(ctx, chatID, export.Filename, export.Data, caption); err != nil {
		s.Log.Error("failed to send export document", "error", err, "chat_id", chatID)
		return s.sendMessage(ctx, chatID, texts.AdminExportError)
	}

	s.Log.Info("export sent", "filename", export.Filename, "rows", export.Rows, "archived", link != "")
	return nil
}

func orNA(v *string) string {
	if v == nil || *v == "" {
		return notAvailable
	}
	return *v
}

func timeOrNA(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.UTC().Format(exportTimeLayout)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
