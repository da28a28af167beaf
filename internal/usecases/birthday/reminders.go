package birthday

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/reminder"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
	"github.com/google/uuid"
)

// SendTodayReminders напоминания о сегодняшних днях рождения
func (s *Service) SendTodayReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error) {
	batch, err := s.Matcher.MatchToday(ctx, now)
	if err != nil {
		return domain.DeliveryReport{}, fmt.Errorf("failed to match today reminders: %w", err)
	}
	return s.dispatch(ctx, domain.ReminderKindToday, batch, now), nil
}

// SendUpcomingReminders напоминания о днях рождения в ближайшие 1-3 дня
func (s *Service) SendUpcomingReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error) {
	batch, err := s.Matcher.MatchUpcoming(ctx, now)
	if err != nil {
		return domain.DeliveryReport{}, fmt.Errorf("failed to match upcoming reminders: %w", err)
	}
	return s.dispatch(ctx, domain.ReminderKindUpcoming, batch, now), nil
}

// dispatch отправляет по событию на пользователя: в Kafka, если настроен продюсер, иначе напрямую.
// Ошибка одного пользователя логируется и учитывается, остальные продолжают получать напоминания.
func (s *Service) dispatch(ctx context.Context, kind domain.ReminderKind, batch reminder.Batch, now time.Time) domain.DeliveryReport {
	report := domain.DeliveryReport{Users: batch.Users, Failed: batch.Failed}

	for _, um := range batch.Matches {
		if ctx.Err() != nil {
			s.Log.Warn("reminder dispatch interrupted", "kind", kind, "error", ctx.Err())
			break
		}

		event := buildEvent(kind, um, now)
		key := dedupKey(kind, event.UserID, event.LocalDate)

		fresh, err := s.Cache.SetNX(ctx, key, event.ID.String(), reminderDedupTTL)
		if err != nil {
			// без дедупликации лучше отправить повторно, чем не отправить
			s.Log.Warn("reminder dedup unavailable", "error", err, "user_id", event.UserID)
			fresh = true
		}
		if !fresh {
			report.Skipped++
			continue
		}

		if err := s.emit(ctx, event); err != nil {
			report.Failed++
			s.Log.Error("failed to deliver reminder",
				"error", err,
				"kind", kind,
				"user_id", event.UserID,
				"event_id", event.ID,
			)
			// повторный запуск задачи в тот же день сможет отправить ещё раз
			if delErr := s.Cache.Delete(ctx, key); delErr != nil {
				s.Log.Warn("failed to release reminder dedup key", "error", delErr, "key", key)
			}
			continue
		}
		report.Sent++
	}

	s.Log.Info("reminders dispatched",
		"kind", kind,
		"users", report.Users,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report
}

func (s *Service) emit(ctx context.Context, event *domain.ReminderEvent) error {
	if s.Publisher != nil {
		return s.Publisher.PublishReminder(ctx, event)
	}
	return s.DeliverReminder(ctx, event)
}

// DeliverReminder отправляет готовое событие пользователю. Единственное напоминание "сегодня"
// с фото уходит фотографией с подписью, при ошибке - обычным текстом.
func (s *Service) DeliverReminder(ctx context.Context, event *domain.ReminderEvent) error {
	if event == nil || len(event.Items) == 0 {
		return domain.WrapBusinessError(fmt.Errorf("%w: empty reminder event", domain.ErrValidation))
	}

	switch event.Kind {
	case domain.ReminderKindToday:
		text := texts.FormatTodayReminder(event.Items)
		if len(event.Items) == 1 && event.Items[0].HasImage() {
			err := s.TelegramClient.SendPhotoURL(ctx, event.ChatID, *event.Items[0].ImageURL, text)
			if err == nil {
				return nil
			}
			s.Log.Warn("failed to send reminder photo, falling back to text",
				"error", err,
				"user_id", event.UserID,
			)
		}
		return s.sendMessage(ctx, event.ChatID, text)

	case domain.ReminderKindUpcoming:
		return s.sendMessage(ctx, event.ChatID, texts.FormatUpcomingReminder(event.Items))

	default:
		return domain.WrapBusinessError(fmt.Errorf("%w: unknown reminder kind %q", domain.ErrValidation, event.Kind))
	}
}

func buildEvent(kind domain.ReminderKind, um reminder.UserMatches, now time.Time) *domain.ReminderEvent {
	items := make([]domain.ReminderItem, 0, len(um.Matches))
	for _, m := range um.Matches {
		items = append(items, domain.ReminderItem{
			BirthdayID: m.Record.ID,
			Name:       m.Record.Name,
			BirthDate:  m.Record.DateString(),
			Category:   m.Record.Category,
			ImageURL:   m.Record.ImageURL,
			Notes:      m.Record.Notes,
			Age:        m.Age,
			DaysAhead:  m.DaysAhead,
		})
	}

	return &domain.ReminderEvent{
		ID:        uuid.New(),
		Kind:      kind,
		UserID:    um.User.ID,
		ChatID:    um.User.ReplyChatID(),
		LocalDate: um.LocalDate.Format(domain.DateLayout),
		Items:     items,
		CreatedAt: now.UTC(),
	}
}

func dedupKey(kind domain.ReminderKind, userID int64, localDate string) string {
	return fmt.Sprintf("reminder:%s:%d:%s", kind, userID, localDate)
}
