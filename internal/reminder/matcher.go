// Package reminder отбирает записи для напоминаний с учётом локальной даты каждого пользователя.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/engine"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/timezone"
	ports "github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"golang.org/x/sync/errgroup"
)

const (
	// UpcomingWindow напоминание о днях рождения через 1..3 дня
	UpcomingWindow = 3

	defaultConcurrency = 8
)

// Match запись, попавшая в напоминание
type Match struct {
	Record domain.Birthday
	// Age для today - полных лет, для upcoming - сколько исполнится
	Age       int
	DaysAhead int
}

// UserMatches совпадения одного пользователя; пустые не возвращаются
type UserMatches struct {
	User      *domain.User
	LocalDate time.Time
	Matches   []Match
}

// Batch результат прохода по всем пользователям
type Batch struct {
	Users   int
	Failed  int
	Matches []UserMatches
}

type Matcher struct {
	users       ports.IUserRepo
	birthdays   ports.IBirthdayRepo
	resolver    *timezone.Resolver
	concurrency int
	log         *slog.Logger
}

func NewMatcher(users ports.IUserRepo, birthdays ports.IBirthdayRepo, resolver *timezone.Resolver, concurrency int, log *slog.Logger) *Matcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Matcher{
		users:       users,
		birthdays:   birthdays,
		resolver:    resolver,
		concurrency: concurrency,
		log:         log,
	}
}

// MatchToday дни рождения, приходящиеся на локальное "сегодня" пользователя
func (m *Matcher) MatchToday(ctx context.Context, now time.Time) (Batch, error) {
	return m.match(ctx, now, func(records []*domain.Birthday, today time.Time) []Match {
		var result []Match
		for _, r := range records {
			if engine.IsBirthdayOn(*r, today) {
				result = append(result, Match{Record: *r, Age: engine.Age(*r, today)})
			}
		}
		return result
	})
}

// MatchUpcoming дни рождения через 1..UpcomingWindow дней, по возрастанию смещения
func (m *Matcher) MatchUpcoming(ctx context.Context, now time.Time) (Batch, error) {
	return m.match(ctx, now, func(records []*domain.Birthday, today time.Time) []Match {
		var result []Match
		for offset := 1; offset <= UpcomingWindow; offset++ {
			day := today.AddDate(0, 0, offset)
			for _, r := range records {
				if engine.IsBirthdayOn(*r, day) {
					result = append(result, Match{
						Record:    *r,
						Age:       engine.TurningAge(*r, today),
						DaysAhead: offset,
					})
				}
			}
		}
		return result
	})
}

type selectFunc func(records []*domain.Birthday, today time.Time) []Match

func (m *Matcher) match(ctx context.Context, now time.Time, sel selectFunc) (Batch, error) {
	users, err := m.users.GetActiveUsers(ctx)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to get active users: %w", err)
	}

	// results[i] принадлежит users[i]; порядок вывода не зависит от планировщика
	results := make([]*UserMatches, len(users))
	failed := make([]bool, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			records, err := m.birthdays.GetByUser(gctx, user.ID, false)
			if err != nil {
				m.log.Error("failed to load birthdays for reminders", "error", err, "user_id", user.ID)
				failed[i] = true
				return nil
			}

			today := m.resolver.LocalToday(user.Timezone, now)
			matches := sel(active(records), today)
			if len(matches) > 0 {
				results[i] = &UserMatches{User: user, LocalDate: today, Matches: matches}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	batch := Batch{Users: len(users)}
	for i := range users {
		if failed[i] {
			batch.Failed++
		}
		if results[i] != nil {
			batch.Matches = append(batch.Matches, *results[i])
		}
	}
	return batch, nil
}

// active на случай, если хранилище вернуло удалённые записи
func active(records []*domain.Birthday) []*domain.Birthday {
	result := records[:0:0]
	for _, r := range records {
		if !r.IsDeleted {
			result = append(result, r)
		}
	}
	return result
}
