// Package analytics агрегирует статистику по снимку записей.
// Функции чистые; на пустом входе возвращают нулевые значения, деления на ноль нет.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/engine"
)

// CategoryCount количество записей категории и доля от активных, %
type CategoryCount struct {
	Category   domain.Category `json:"category"`
	Label      string          `json:"label"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// MonthCount количество записей с месяцем рождения Month
type MonthCount struct {
	Month time.Month `json:"month"`
	Name  string     `json:"name"`
	Count int        `json:"count"`
}

type NextBirthday struct {
	Name      string          `json:"name"`
	Date      time.Time       `json:"date"`
	DaysUntil int             `json:"days_until"`
	Category  domain.Category `json:"category"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UserSummary сводка по записям одного пользователя
type UserSummary struct {
	TotalBirthdays      int             `json:"total_birthdays"`
	UpcomingThisMonth   int             `json:"upcoming_this_month"`
	NextBirthday        *NextBirthday   `json:"next_birthday"`
	CategoryBreakdown   []CategoryCount `json:"category_breakdown"`
	MonthlyDistribution []MonthCount    `json:"monthly_distribution"`
	AverageAge          float64         `json:"average_age"`
	AgeRange            AgeRange        `json:"age_range"`
}

type Overview struct {
	TotalUsers       int     `json:"total_users"`
	TotalBirthdays   int     `json:"total_birthdays"`
	ActiveBirthdays  int     `json:"active_birthdays"`
	DeletedBirthdays int     `json:"deleted_birthdays"`
	DeletionRate     float64 `json:"deletion_rate"`
}

type AgeStats struct {
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Median  int     `json:"median"`
}

type Engagement struct {
	WithImages     int     `json:"birthdays_with_images"`
	WithNotes      int     `json:"birthdays_with_notes"`
	ImageUsageRate float64 `json:"image_usage_rate"`
	NotesUsageRate float64 `json:"notes_usage_rate"`
}

type UserActivity struct {
	AverageBirthdaysPerUser   float64 `json:"average_birthdays_per_user"`
	MostBirthdaysBySingleUser int     `json:"most_birthdays_by_single_user"`
	TotalActiveUsers          int     `json:"total_active_users"`
}

// SystemSummary отчёт по всей базе
type SystemSummary struct {
	Overview             Overview        `json:"overview"`
	CategoryDistribution []CategoryCount `json:"category_distribution"`
	AgeStatistics        AgeStats        `json:"age_statistics"`
	MonthlyDistribution  []MonthCount    `json:"monthly_distribution"`
	Engagement           Engagement      `json:"engagement"`
	UserActivity         UserActivity    `json:"user_activity"`
}

// UserStats сводка по активным записям пользователя на дату today
func UserStats(records []domain.Birthday, today time.Time) UserSummary {
	active := activeOnly(records)

	summary := UserSummary{
		TotalBirthdays:      len(active),
		CategoryBreakdown:   make([]CategoryCount, 0),
		MonthlyDistribution: monthly(active, fullMonthName),
	}
	if len(active) == 0 {
		return summary
	}

	counts := countByCategory(active)
	for _, c := range domain.AllCategories() {
		if counts[c] == 0 {
			continue
		}
		summary.CategoryBreakdown = append(summary.CategoryBreakdown, CategoryCount{
			Category: c,
			Label:    c.Label(),
			Count:    counts[c],
		})
	}

	_, month, day := today.Date()
	for _, r := range active {
		if r.BirthDate.Month() == month && r.BirthDate.Day() >= day {
			summary.UpcomingThisMonth++
		}
	}

	if next, ok := engine.NextUpcoming(active, today); ok {
		summary.NextBirthday = &NextBirthday{
			Name:      next.Birthday.Name,
			Date:      next.Birthday.BirthDate,
			DaysUntil: next.DaysUntil,
			Category:  next.Birthday.Category,
		}
	}

	ages := agesOf(active, today)
	summary.AverageAge = round1(mean(ages))
	summary.AgeRange = AgeRange{Min: ages[0], Max: ages[len(ages)-1]}

	return summary
}

// System отчёт по всем записям (включая удалённые) на дату today
func System(records []domain.Birthday, today time.Time) SystemSummary {
	active := activeOnly(records)
	total := len(records)
	deleted := total - len(active)

	users := make(map[int64]struct{})
	for _, r := range records {
		users[r.UserID] = struct{}{}
	}

	summary := SystemSummary{
		Overview: Overview{
			TotalUsers:       len(users),
			TotalBirthdays:   total,
			ActiveBirthdays:  len(active),
			DeletedBirthdays: deleted,
			DeletionRate:     rate(deleted, total),
		},
		CategoryDistribution: categoryDistribution(active),
		MonthlyDistribution:  monthly(active, shortMonthName),
	}

	if ages := agesOf(active, today); len(ages) > 0 {
		summary.AgeStatistics = AgeStats{
			Average: round1(mean(ages)),
			Min:     ages[0],
			Max:     ages[len(ages)-1],
			// элемент с индексом n/2 отсортированного набора, без усреднения двух средних
			Median: ages[len(ages)/2],
		}
	}

	for _, r := range active {
		if r.HasImage() {
			summary.Engagement.WithImages++
		}
		if r.HasNotes() {
			summary.Engagement.WithNotes++
		}
	}
	summary.Engagement.ImageUsageRate = rate(summary.Engagement.WithImages, len(active))
	summary.Engagement.NotesUsageRate = rate(summary.Engagement.WithNotes, len(active))

	perUser := make(map[int64]int)
	for _, r := range active {
		perUser[r.UserID]++
	}
	for _, n := range perUser {
		if n > summary.UserActivity.MostBirthdaysBySingleUser {
			summary.UserActivity.MostBirthdaysBySingleUser = n
		}
	}
	summary.UserActivity.TotalActiveUsers = len(perUser)
	if len(perUser) > 0 {
		summary.UserActivity.AverageBirthdaysPerUser = round1(float64(len(active)) / float64(len(perUser)))
	}

	return summary
}

func activeOnly(records []domain.Birthday) []domain.Birthday {
	result := make([]domain.Birthday, 0, len(records))
	for _, r := range records {
		if !r.IsDeleted {
			result = append(result, r)
		}
	}
	return result
}

func countByCategory(records []domain.Birthday) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}

// categoryDistribution доли считаются методом наибольшего остатка в десятых долях процента,
// поэтому сумма по измерению не превышает 100
func categoryDistribution(active []domain.Birthday) []CategoryCount {
	categories := domain.AllCategories()
	counts := countByCategory(active)

	values := make([]int, len(categories))
	for i, c := range categories {
		values[i] = counts[c]
	}
	percentages := largestRemainder(values, len(active))

	result := make([]CategoryCount, 0, len(categories))
	for i, c := range categories {
		result = append(result, CategoryCount{
			Category:   c,
			Label:      c.Label(),
			Count:      values[i],
			Percentage: percentages[i],
		})
	}
	return result
}

// largestRemainder распределяет проценты с точностью 0.1 так, что каждое значение -
// округление вниз или вверх точной доли, а сумма равна округлённой вниз общей доле
func largestRemainder(values []int, total int) []float64 {
	result := make([]float64, len(values))
	if total <= 0 {
		return result
	}

	const scale = 1000 // десятые доли процента

	units := make([]int, len(values))
	remainders := make([]int, len(values))
	sumValues, sumUnits := 0, 0
	for i, v := range values {
		units[i] = v * scale / total
		remainders[i] = v * scale % total
		sumValues += v
		sumUnits += units[i]
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	leftover := sumValues*scale/total - sumUnits
	for _, i := range order {
		if leftover <= 0 {
			break
		}
		if remainders[i] == 0 {
			continue
		}
		units[i]++
		leftover--
	}

	for i, u := range units {
		result[i] = float64(u) / 10
	}
	return result
}

func monthly(active []domain.Birthday, name func(time.Month) string) []MonthCount {
	result := make([]MonthCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		result = append(result, MonthCount{Month: m, Name: name(m)})
	}
	for _, r := range active {
		result[r.BirthDate.Month()-1].Count++
	}
	return result
}

func fullMonthName(m time.Month) string {
	return m.String()
}

func shortMonthName(m time.Month) string {
	return m.String()[:3]
}

// agesOf возрасты по возрастанию
func agesOf(records []domain.Birthday, today time.Time) []int {
	ages := make([]int, 0, len(records))
	for _, r := range records {
		ages = append(ages, engine.Age(r, today))
	}
	sort.Ints(ages)
	return ages
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
