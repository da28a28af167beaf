package birthday

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/birthday-bot/internal/analytics"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/timezone"
)

// ComputeUserStats сводка по записям пользователя на его локальную дату.
// Возвращает domain.ErrUserNotFound для неизвестного пользователя.
func (s *Service) ComputeUserStats(ctx context.Context, userID int64) (analytics.UserSummary, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return analytics.UserSummary{}, err
	}

	records, err := s.BirthdayRepo.GetByUser(ctx, userID, false)
	if err != nil {
		return analytics.UserSummary{}, fmt.Errorf("failed to get birthdays for stats: %w", err)
	}

	today := s.Resolver.LocalToday(user.Timezone, s.now())
	return analytics.UserStats(values(records), today), nil
}

// ComputeSystemAnalytics отчёт по всей базе, включая удалённые записи.
// Без единой записи возвращает domain.ErrNoData.
func (s *Service) ComputeSystemAnalytics(ctx context.Context) (analytics.SystemSummary, error) {
	records, err := s.BirthdayRepo.GetAll(ctx, true)
	if err != nil {
		return analytics.SystemSummary{}, fmt.Errorf("failed to get birthdays for analytics: %w", err)
	}
	if len(records) == 0 {
		return analytics.SystemSummary{}, domain.ErrNoData
	}

	return analytics.System(values(records), timezone.DateOf(s.now().UTC())), nil
}

// adminCounts пользователи, активные и удалённые записи для /admin_stats
func (s *Service) adminCounts(ctx context.Context) (users, active, deleted int, err error) {
	users, err = s.UserRepo.Count(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count users: %w", err)
	}

	records, err := s.BirthdayRepo.GetAll(ctx, true)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get birthdays: %w", err)
	}
	for _, r := range records {
		if r.IsDeleted {
			deleted++
		} else {
			active++
		}
	}
	return users, active, deleted, nil
}
