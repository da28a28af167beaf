package birthday

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/engine"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/timezone"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/validator"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	msgInvalidName     = "Invalid name format"
	msgInvalidDate     = "Invalid date format. Use YYYY-MM-DD"
	msgInvalidImageURL = "Invalid image URL format"
	msgUserNotFound    = "User not found"
)

func msgInvalidCategory() string {
	return "Invalid category. Use: " + domain.CategoryKeys()
}

func msgAlreadyExists(name string) string {
	return fmt.Sprintf("Birthday for %s already exists", name)
}

func msgNotFound(name string) string {
	return fmt.Sprintf("Birthday for %s not found", name)
}

var titleCaser = cases.Title(language.English)

// AddBirthday создаёт запись. Если есть удалённая запись с тем же именем, она восстанавливается
// с новыми данными; активная запись с тем же именем - ошибка дубликата.
func (s *Service) AddBirthday(ctx context.Context, userID int64, name, dateStr, category string, imageURL, notes *string) domain.Result {
	if !validator.ValidateName(name) {
		return domain.Fail(domain.ErrValidation, msgInvalidName)
	}

	now := s.now()
	birthDate, err := validator.ParseDate(strings.TrimSpace(dateStr), now)
	if err != nil {
		return domain.Fail(domain.ErrValidation, msgInvalidDate)
	}

	if strings.TrimSpace(category) == "" {
		category = domain.CategoryOther.String()
	}
	cat, ok := validator.ValidateCategory(category)
	if !ok {
		return domain.Fail(domain.ErrValidation, msgInvalidCategory())
	}

	imageURL = normalizeOptional(imageURL)
	if imageURL != nil && !validator.ValidateImageURL(*imageURL) {
		return domain.Fail(domain.ErrValidation, msgInvalidImageURL)
	}
	notes = s.sanitizeNotes(notes)

	if _, err := s.ensureUser(ctx, userID); err != nil {
		return s.infraFailure("adding", err, userID)
	}

	name = strings.TrimSpace(name)
	var result domain.Result

	err = s.BirthdayRepo.WithNameLock(ctx, userID, name, func(ctx context.Context, repo repository.IBirthdayRepo) error {
		active, err := repo.FindActiveByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if active != nil {
			result = domain.Fail(domain.ErrDuplicateBirthday, msgAlreadyExists(name))
			return nil
		}

		deleted, err := repo.FindDeletedByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if deleted != nil {
			deleted.BirthDate = birthDate
			deleted.Category = cat
			deleted.ImageURL = imageURL
			deleted.Notes = notes
			deleted.Restore(now)
			if err := repo.Save(ctx, deleted); err != nil {
				return err
			}
			result = domain.Ok(fmt.Sprintf("Birthday restored for %s (%s)", deleted.Name, deleted.DateString()), deleted)
			return nil
		}

		created := &domain.Birthday{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      titleCaser.String(name),
			BirthDate: birthDate,
			Category:  cat,
			ImageURL:  imageURL,
			Notes:     notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, created); err != nil {
			return err
		}
		result = domain.Ok(fmt.Sprintf("Birthday added for %s (%s) - Category: %s",
			created.Name, created.DateString(), cat.Label()), created)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateBirthday) {
			return domain.Fail(domain.ErrDuplicateBirthday, msgAlreadyExists(name))
		}
		return s.infraFailure("adding", err, userID)
	}

	if result.Success {
		s.Log.Info("birthday saved", "user_id", userID, "birthday_id", result.Birthday.ID)
	}
	return result
}

// UpdateBirthday частично обновляет активную запись. Изменения применяются,
// только если все переданные поля валидны.
func (s *Service) UpdateBirthday(ctx context.Context, userID int64, name string, patch domain.BirthdayPatch) domain.Result {
	if _, err := s.UserRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Fail(domain.ErrUserNotFound, msgUserNotFound)
		}
		return s.infraFailure("updating", err, userID)
	}

	now := s.now()
	var result domain.Result

	err := s.BirthdayRepo.WithNameLock(ctx, userID, name, func(ctx context.Context, repo repository.IBirthdayRepo) error {
		b, err := repo.FindActiveByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if b == nil {
			result = domain.Fail(domain.ErrBirthdayNotFound, msgNotFound(name))
			return nil
		}

		var updated []string

		if patch.BirthDate != nil {
			date, err := validator.ParseDate(strings.TrimSpace(*patch.BirthDate), now)
			if err != nil {
				result = domain.Fail(domain.ErrValidation, msgInvalidDate)
				return nil
			}
			b.BirthDate = date
			updated = append(updated, "date to "+date.Format(domain.DateLayout))
		}

		if patch.Category != nil {
			cat, ok := validator.ValidateCategory(*patch.Category)
			if !ok {
				result = domain.Fail(domain.ErrValidation, msgInvalidCategory())
				return nil
			}
			b.Category = cat
			updated = append(updated, "category to "+cat.Label())
		}

		// пустая строка удаляет фото
		if patch.ImageURL != nil {
			url := normalizeOptional(patch.ImageURL)
			if url != nil && !validator.ValidateImageURL(*url) {
				result = domain.Fail(domain.ErrValidation, msgInvalidImageURL)
				return nil
			}
			b.ImageURL = url
			updated = append(updated, "image")
		}

		if patch.Notes != nil {
			b.Notes = s.sanitizeNotes(patch.Notes)
			updated = append(updated, "notes")
		}

		b.UpdatedAt = now
		if err := repo.Save(ctx, b); err != nil {
			return err
		}

		summary := "no changes"
		if len(updated) > 0 {
			summary = strings.Join(updated, ", ")
		}
		result = domain.Ok(fmt.Sprintf("Birthday for %s updated: %s", name, summary), b)
		return nil
	})
	if err != nil {
		return s.infraFailure("updating", err, userID)
	}
	return result
}

// DeleteBirthday мягкое удаление активной записи
func (s *Service) DeleteBirthday(ctx context.Context, userID int64, name string) domain.Result {
	if _, err := s.UserRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Fail(domain.ErrUserNotFound, msgUserNotFound)
		}
		return s.infraFailure("deleting", err, userID)
	}

	var result domain.Result
	err := s.BirthdayRepo.WithNameLock(ctx, userID, name, func(ctx context.Context, repo repository.IBirthdayRepo) error {
		b, err := repo.FindActiveByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if b == nil {
			result = domain.Fail(domain.ErrBirthdayNotFound, msgNotFound(name))
			return nil
		}

		b.SoftDelete(s.now())
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		result = domain.Ok(fmt.Sprintf("Birthday for %s deleted", name), b)
		return nil
	})
	if err != nil {
		return s.infraFailure("deleting", err, userID)
	}
	return result
}

// RestoreBirthday восстанавливает последнюю удалённую запись с этим именем
func (s *Service) RestoreBirthday(ctx context.Context, userID int64, name string) domain.Result {
	if _, err := s.UserRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Fail(domain.ErrUserNotFound, msgUserNotFound)
		}
		return s.infraFailure("restoring", err, userID)
	}

	var result domain.Result
	err := s.BirthdayRepo.WithNameLock(ctx, userID, name, func(ctx context.Context, repo repository.IBirthdayRepo) error {
		b, err := repo.FindDeletedByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if b == nil {
			result = domain.Fail(domain.ErrDeletedBirthdayNotFound, fmt.Sprintf("No deleted birthday found for %s", name))
			return nil
		}

		active, err := repo.FindActiveByName(ctx, userID, name)
		if err != nil {
			return err
		}
		if active != nil {
			result = domain.Fail(domain.ErrDuplicateBirthday, msgAlreadyExists(name))
			return nil
		}

		b.Restore(s.now())
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		result = domain.Ok(fmt.Sprintf("Birthday for %s restored successfully", name), b)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateBirthday) {
			return domain.Fail(domain.ErrDuplicateBirthday, msgAlreadyExists(name))
		}
		return s.infraFailure("restoring", err, userID)
	}
	return result
}

// ListBirthdays активные записи пользователя по дате рождения; неизвестный пользователь - пустой список
func (s *Service) ListBirthdays(ctx context.Context, userID int64) ([]*domain.Birthday, error) {
	records, err := s.BirthdayRepo.GetByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}
	return records, nil
}

// BirthdaysByCategory активные записи категории; неизвестная категория - пустой список
func (s *Service) BirthdaysByCategory(ctx context.Context, userID int64, category string) ([]*domain.Birthday, error) {
	cat, ok := validator.ValidateCategory(category)
	if !ok {
		return []*domain.Birthday{}, nil
	}

	records, err := s.ListBirthdays(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Birthday, 0)
	for _, r := range records {
		if r.Category == cat {
			result = append(result, r)
		}
	}
	return result, nil
}

// BirthdaysByMonth активные записи месяца по возрастанию дня; month вне 1..12 - пустой список
func (s *Service) BirthdaysByMonth(ctx context.Context, userID int64, month int) ([]*domain.Birthday, error) {
	if month < 1 || month > 12 {
		return []*domain.Birthday{}, nil
	}

	records, err := s.ListBirthdays(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := engine.FilterByMonth(values(records), time.Month(month))
	return pointers(filtered), nil
}

// SetTimezone сохраняет зону только после проверки по базе tzdata
func (s *Service) SetTimezone(ctx context.Context, userID int64, tz string) domain.Result {
	tz = strings.TrimSpace(tz)
	if !timezone.IsValid(tz) {
		return domain.Fail(domain.ErrValidation, fmt.Sprintf("Unknown timezone: %s. Use an IANA name like Europe/Berlin", tz))
	}

	if err := s.UserRepo.UpdateTimezone(ctx, userID, tz); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Fail(domain.ErrUserNotFound, msgUserNotFound)
		}
		s.Log.Error("failed to update timezone", "error", err, "user_id", userID)
		return domain.Fail(domain.ErrInternal, "Error updating timezone: "+err.Error())
	}

	s.Log.Info("timezone updated", "user_id", userID, "timezone", tz)
	return domain.Ok("Timezone set to "+tz, nil)
}

// ensureUser находит пользователя или создаёт его (добавление возможно и через admin API)
func (s *Service) ensureUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.UserRepo.GetOrCreate(ctx, &domain.User{ID: userID, ChatID: userID, Timezone: domain.DefaultTimezone})
}

func (s *Service) infraFailure(action string, err error, userID int64) domain.Result {
	s.Log.Error("birthday operation failed", "error", err, "action", action, "user_id", userID)
	return domain.Fail(domain.ErrInternal, fmt.Sprintf("Error %s birthday: %s", action, err.Error()))
}

// sanitizeNotes убирает разметку; пустые заметки превращаются в nil
func (s *Service) sanitizeNotes(notes *string) *string {
	notes = normalizeOptional(notes)
	if notes == nil {
		return nil
	}
	// StrictPolicy экранирует &, <, >; храним исходный текст без тегов
	clean := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(*notes)))
	if clean == "" {
		return nil
	}
	return &clean
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func values(records []*domain.Birthday) []domain.Birthday {
	result := make([]domain.Birthday, 0, len(records))
	for _, r := range records {
		result = append(result, *r)
	}
	return result
}

func pointers(records []domain.Birthday) []*domain.Birthday {
	result := make([]*domain.Birthday, 0, len(records))
	for i := range records {
		result = append(result, &records[i])
	}
	return result
}
