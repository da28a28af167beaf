package analytics

import (
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 9, 27, 0, 0, 0, 0, time.UTC)

func rec(userID int64, name string, y int, m time.Month, d int, c domain.Category) domain.Birthday {
	return domain.Birthday{
		UserID:    userID,
		Name:      name,
		BirthDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Category:  c,
	}
}

func strPtr(s string) *string { return &s }

func TestSystem_Empty(t *testing.T) {
	s := System(nil, today)

	assert.Equal(t, 0, s.Overview.TotalBirthdays)
	assert.Equal(t, 0.0, s.Overview.DeletionRate)
	assert.Equal(t, AgeStats{}, s.AgeStatistics)
	assert.Equal(t, 0.0, s.Engagement.ImageUsageRate)
	assert.Equal(t, 0.0, s.UserActivity.AverageBirthdaysPerUser)

	require.Len(t, s.MonthlyDistribution, 12)
	for i, m := range s.MonthlyDistribution {
		assert.Equal(t, time.Month(i+1), m.Month)
		assert.Equal(t, 0, m.Count)
	}
	assert.Equal(t, "Jan", s.MonthlyDistribution[0].Name)

	require.Len(t, s.CategoryDistribution, len(domain.AllCategories()))
	for _, c := range s.CategoryDistribution {
		assert.Equal(t, 0.0, c.Percentage)
	}
}

func TestSystem_Overview(t *testing.T) {
	deleted := rec(2, "Gone", 1980, 1, 1, domain.CategoryWork)
	deleted.IsDeleted = true

	withImage := rec(1, "Alice", 1990, 9, 27, domain.CategoryFriend)
	withImage.ImageURL = strPtr("https://example.com/a.jpg")
	withImage.Notes = strPtr("likes tea")

	records := []domain.Birthday{
		withImage,
		rec(1, "Bob", 1985, 12, 31, domain.CategoryWork),
		rec(1, "Carl", 2000, 9, 1, domain.CategoryFriend),
		deleted,
	}

	s := System(records, today)

	assert.Equal(t, Overview{
		TotalUsers:       2,
		TotalBirthdays:   4,
		ActiveBirthdays:  3,
		DeletedBirthdays: 1,
		DeletionRate:     25.0,
	}, s.Overview)

	assert.Equal(t, 1, s.Engagement.WithImages)
	assert.Equal(t, 1, s.Engagement.WithNotes)
	assert.Equal(t, 33.3, s.Engagement.ImageUsageRate)

	// deleted record is excluded from activity
	assert.Equal(t, 1, s.UserActivity.TotalActiveUsers)
	assert.Equal(t, 3, s.UserActivity.MostBirthdaysBySingleUser)
	assert.Equal(t, 3.0, s.UserActivity.AverageBirthdaysPerUser)

	assert.Equal(t, 2, s.MonthlyDistribution[time.September-1].Count)
	assert.Equal(t, 1, s.MonthlyDistribution[time.December-1].Count)
	assert.Equal(t, 0, s.MonthlyDistribution[time.January-1].Count)
}

func TestSystem_AgeStatistics(t *testing.T) {
	// возрасты 10, 20, 30, 40 на 2024-09-27
	records := []domain.Birthday{
		rec(1, "A", 1984, 1, 1, domain.CategoryOther),
		rec(1, "B", 2014, 1, 1, domain.CategoryOther),
		rec(1, "C", 1994, 1, 1, domain.CategoryOther),
		rec(1, "D", 2004, 1, 1, domain.CategoryOther),
	}

	s := System(records, today)
	assert.Equal(t, 25.0, s.AgeStatistics.Average)
	assert.Equal(t, 10, s.AgeStatistics.Min)
	assert.Equal(t, 40, s.AgeStatistics.Max)
	// индекс n/2, а не среднее двух центральных
	assert.Equal(t, 30, s.AgeStatistics.Median)

	s = System(records[:3], today)
	assert.Equal(t, 30, s.AgeStatistics.Median)
}

func TestSystem_CategoryPercentagesNeverExceed100(t *testing.T) {
	cases := [][]domain.Category{
		{domain.CategoryLove, domain.CategoryFamily, domain.CategoryWork},
		{domain.CategoryLove, domain.CategoryLove, domain.CategoryFamily, domain.CategoryWork, domain.CategoryFriend, domain.CategoryOther},
		{domain.CategoryRelative},
	}
	for i := 7; i <= 13; i++ {
		var cats []domain.Category
		for j := 0; j < i; j++ {
			cats = append(cats, domain.AllCategories()[j%len(domain.AllCategories())])
		}
		cases = append(cases, cats)
	}

	for _, cats := range cases {
		var records []domain.Birthday
		for i, c := range cats {
			records = append(records, rec(1, string(rune('A'+i)), 1990, 1, 1, c))
		}

		s := System(records, today)
		sum := 0.0
		for _, c := range s.CategoryDistribution {
			assert.GreaterOrEqual(t, c.Percentage, 0.0)
			sum += c.Percentage
		}
		assert.LessOrEqual(t, sum, 100.0+1e-9)
		assert.InDelta(t, 100.0, sum, 0.01)
	}
}

func TestLargestRemainder(t *testing.T) {
	assert.Equal(t, []float64{33.4, 33.3, 33.3}, largestRemainder([]int{1, 1, 1}, 3))
	assert.Equal(t, []float64{50, 50, 0}, largestRemainder([]int{1, 1, 0}, 2))
	assert.Equal(t, []float64{0, 0}, largestRemainder([]int{0, 0}, 0))
}

func TestUserStats_Empty(t *testing.T) {
	s := UserStats(nil, today)
	assert.Equal(t, 0, s.TotalBirthdays)
	assert.Nil(t, s.NextBirthday)
	assert.Empty(t, s.CategoryBreakdown)
	assert.Len(t, s.MonthlyDistribution, 12)
	assert.Equal(t, 0.0, s.AverageAge)
}

func TestUserStats(t *testing.T) {
	deleted := rec(1, "Gone", 1990, 9, 28, domain.CategoryLove)
	deleted.IsDeleted = true

	records := []domain.Birthday{
		rec(1, "Alice", 1990, 9, 27, domain.CategoryFriend),
		rec(1, "Bob", 1985, 12, 31, domain.CategoryWork),
		rec(1, "Early", 2000, 9, 2, domain.CategoryFriend),
		deleted,
	}

	s := UserStats(records, today)

	assert.Equal(t, 3, s.TotalBirthdays)
	assert.Equal(t, 1, s.UpcomingThisMonth)

	require.NotNil(t, s.NextBirthday)
	assert.Equal(t, "Alice", s.NextBirthday.Name)
	assert.Equal(t, 0, s.NextBirthday.DaysUntil)

	assert.Equal(t, []CategoryCount{
		{Category: domain.CategoryWork, Label: domain.CategoryWork.Label(), Count: 1},
		{Category: domain.CategoryFriend, Label: domain.CategoryFriend.Label(), Count: 2},
	}, s.CategoryBreakdown)

	assert.Equal(t, "September", s.MonthlyDistribution[8].Name)
	assert.Equal(t, 2, s.MonthlyDistribution[8].Count)

	// 34, 38, 24
	assert.Equal(t, 32.0, s.AverageAge)
	assert.Equal(t, AgeRange{Min: 24, Max: 38}, s.AgeRange)
}
