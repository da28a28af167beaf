package birthday

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/engine"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

// handleQuickAdd /add_birthday Name YYYY-MM-DD [category]; имя может состоять из нескольких слов
func (s *Service) handleQuickAdd(ctx context.Context, user *domain.User, args string) error {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return s.sendMessage(ctx, user.ReplyChatID(), fmt.Sprintf(texts.QuickAddUsage, domain.CategoryKeys()))
	}

	category := domain.CategoryOther.String()
	dateStr := parts[len(parts)-1]
	nameParts := parts[:len(parts)-1]
	if len(parts) >= 3 {
		if c, ok := domain.ParseCategory(parts[len(parts)-1]); ok {
			category = c.String()
			dateStr = parts[len(parts)-2]
			nameParts = parts[:len(parts)-2]
		}
	}

	result := s.AddBirthday(ctx, user.ID, strings.Join(nameParts, " "), dateStr, category, nil, nil)
	return s.sendResult(ctx, user.ReplyChatID(), result)
}

func (s *Service) handleDelete(ctx context.Context, user *domain.User, args string) error {
	name := joinFields(args)
	if name == "" {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.DeleteUsage)
	}
	return s.sendResult(ctx, user.ReplyChatID(), s.DeleteBirthday(ctx, user.ID, name))
}

func (s *Service) handleRestore(ctx context.Context, user *domain.User, args string) error {
	name := joinFields(args)
	if name == "" {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.RestoreUsage)
	}
	return s.sendResult(ctx, user.ReplyChatID(), s.RestoreBirthday(ctx, user.ID, name))
}

func (s *Service) handleMyBirthdays(ctx context.Context, user *domain.User) error {
	records, err := s.ListBirthdays(ctx, user.ID)
	if err != nil {
		s.Log.Error("failed to list birthdays", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	if len(records) == 0 {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.MyBirthdaysEmpty)
	}

	today := s.localToday(user)
	groups := engine.GroupByCategory(values(records))

	rendered := make([]texts.CategoryGroup, 0, len(groups))
	for _, g := range groups {
		lines := make([]string, 0, len(g.Records))
		for i := range g.Records {
			lines = append(lines, texts.BirthdayLine(&g.Records[i], engine.Age(g.Records[i], today)))
		}
		rendered = append(rendered, texts.CategoryGroup{Category: g.Category, Lines: lines})
	}

	return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatBirthdayList(rendered))
}

func (s *Service) handleMonth(ctx context.Context, user *domain.User, args string) error {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.MonthUsage)
	}

	month, err := strconv.Atoi(strings.Fields(raw)[0])
	if err != nil {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.MonthBadFormat)
	}
	if month < 1 || month > 12 {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.MonthOutOfRange)
	}

	records, err := s.BirthdaysByMonth(ctx, user.ID, month)
	if err != nil {
		s.Log.Error("failed to get birthdays by month", "error", err, "user_id", user.ID, "month", month)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}

	today := s.localToday(user)
	ages := make([]int, 0, len(records))
	for _, r := range records {
		ages = append(ages, engine.Age(*r, today))
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatMonthList(time.Month(month), records, ages))
}

func (s *Service) handleMyStats(ctx context.Context, user *domain.User) error {
	stats, err := s.ComputeUserStats(ctx, user.ID)
	if err != nil {
		s.Log.Error("failed to compute user stats", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	if stats.TotalBirthdays == 0 {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.StatsEmpty)
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatUserStats(stats))
}

func (s *Service) handleSetTimezone(ctx context.Context, user *domain.User, args string) error {
	tz := strings.TrimSpace(args)
	if tz == "" {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatTimezoneCurrent(user.Timezone))
	}

	result := s.SetTimezone(ctx, user.ID, tz)
	if !result.Success {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(result.Message))
	}
	return s.sendMessage(ctx, user.ReplyChatID(), texts.FormatTimezoneSet(tz))
}

// handleUpdateMenu карточка записи с кнопками выбора поля
func (s *Service) handleUpdateMenu(ctx context.Context, user *domain.User, args string) error {
	name := joinFields(args)
	if name == "" {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.UpdateUsage)
	}

	b, err := s.BirthdayRepo.FindActiveByName(ctx, user.ID, name)
	if err != nil {
		s.Log.Error("failed to find birthday", "error", err, "user_id", user.ID)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	if b == nil {
		return s.sendMessage(ctx, user.ReplyChatID(), texts.Failure(msgNotFound(name)))
	}

	id := b.ID.String()
	kb := domain.NewInlineKeyboard(2,
		domain.InlineKeyboardButton{Text: texts.ButtonDate, CallbackData: cbUpdate + "date:" + id},
		domain.InlineKeyboardButton{Text: texts.ButtonCategory, CallbackData: cbUpdate + "category:" + id},
		domain.InlineKeyboardButton{Text: texts.ButtonPhoto, CallbackData: cbUpdate + "photo:" + id},
		domain.InlineKeyboardButton{Text: texts.ButtonNotes, CallbackData: cbUpdate + "notes:" + id},
	)
	return s.sendMessageWithKeyboard(ctx, user.ReplyChatID(), texts.FormatUpdateMenu(b), kb)
}

func (s *Service) localToday(user *domain.User) time.Time {
	return s.Resolver.LocalToday(user.Timezone, s.now())
}

// findOwnedBirthday активная запись пользователя по id из callback_data
func (s *Service) findOwnedBirthday(ctx context.Context, userID int64, id string) (*domain.Birthday, error) {
	records, err := s.ListBirthdays(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID.String() == id {
			return r, nil
		}
	}
	return nil, domain.ErrBirthdayNotFound
}

func joinFields(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrBirthdayNotFound)
}
