// Package engine содержит чистые вычисления над снимком записей о днях рождения.
// Все функции работают только с календарной датой аргумента today (время и зона игнорируются)
// и безопасны для конкурентного вызова.
package engine

import (
	"sort"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

const hoursPerDay = 24

// Age полных лет на дату today; для даты рождения в будущем - 0
func Age(b domain.Birthday, today time.Time) int {
	ty, tm, td := today.Date()
	by, bm, bd := b.BirthDate.Date()

	age := ty - by
	if bm > tm || (bm == tm && bd > td) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// TurningAge сколько исполнится в ближайший день рождения
func TurningAge(b domain.Birthday, today time.Time) int {
	return Age(b, today) + 1
}

// IsBirthdayOn совпадают месяц и день; 29 февраля совпадает только в високосные годы
func IsBirthdayOn(b domain.Birthday, date time.Time) bool {
	_, bm, bd := b.BirthDate.Date()
	_, m, d := date.Date()
	return bm == m && bd == d
}

// DaysUntilNext дней до ближайшего наступления дня рождения, 0 - сегодня.
// Для 29 февраля ближайшим считается следующий високосный год.
func DaysUntilNext(b domain.Birthday, today time.Time) int {
	t := civil(today)
	_, bm, bd := b.BirthDate.Date()

	for year := t.Year(); ; year++ {
		candidate, ok := occurrence(year, bm, bd)
		if !ok || candidate.Before(t) {
			continue
		}
		return int(candidate.Sub(t).Hours() / hoursPerDay)
	}
}

// CategoryGroup записи одной категории
type CategoryGroup struct {
	Category domain.Category
	Records  []domain.Birthday
}

// GroupByCategory группирует с сохранением порядка первого появления категорий и записей
func GroupByCategory(records []domain.Birthday) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[domain.Category]int)

	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, CategoryGroup{Category: r.Category})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	return groups
}

// FilterByMonth записи с месяцем рождения month, по возрастанию дня
func FilterByMonth(records []domain.Birthday, month time.Month) []domain.Birthday {
	result := make([]domain.Birthday, 0)
	for _, r := range records {
		if r.BirthDate.Month() == month {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BirthDate.Day() < result[j].BirthDate.Day()
	})

	return result
}

// Upcoming ближайший день рождения
type Upcoming struct {
	Birthday  domain.Birthday
	DaysUntil int
}

// NextUpcoming запись с минимальным DaysUntilNext; при равенстве - первая во входе
func NextUpcoming(records []domain.Birthday, today time.Time) (Upcoming, bool) {
	var (
		best  Upcoming
		found bool
	)

	for _, r := range records {
		days := DaysUntilNext(r, today)
		if !found || days < best.DaysUntil {
			best = Upcoming{Birthday: r, DaysUntil: days}
			found = true
		}
	}

	return best, found
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// occurrence дата (year, m, d), если она существует в календаре
func occurrence(year int, m time.Month, d int) (time.Time, bool) {
	t := time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
	return t, t.Month() == m && t.Day() == d
}
