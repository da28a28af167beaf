package texts

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/analytics"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// MessageLimit лимит Telegram на длину текста сообщения (с запасом)
const MessageLimit = 4000

const (
	longDateLayout  = "January 02, 2006"
	shortDateLayout = "January 02"
)

// Escape экранирует пользовательский ввод для HTML parse mode
func Escape(s string) string {
	return html.EscapeString(s)
}

// Success и Failure оформляют результат мутации
func Success(message string) string {
	return "✅ " + Escape(message)
}

func Failure(message string) string {
	return "❌ " + Escape(message)
}

// FormatUnknownCommand форматирует сообщение о неизвестной команде
func FormatUnknownCommand(command string) string {
	return fmt.Sprintf(UnknownCommand, Escape(command))
}

// FormatAddFlowConfirm подтверждение имени и даты в интерактивном добавлении
func FormatAddFlowConfirm(name, dateStr string) string {
	return fmt.Sprintf(AddFlowSelectCategory, Escape(name), Escape(dateStr))
}

func FormatCategoryChosen(c domain.Category) string {
	return fmt.Sprintf(AddFlowAskPhoto, c.Label())
}

// FormatAddFinished итог интерактивного добавления
func FormatAddFinished(result domain.Result, imageURL, notes *string) string {
	if !result.Success {
		return Failure(result.Message)
	}

	var b strings.Builder
	b.WriteString(Success(result.Message))
	if imageURL != nil && *imageURL != "" {
		b.WriteString("\n📷 Photo: " + Escape(*imageURL))
	}
	if notes != nil && *notes != "" {
		b.WriteString("\n📝 Notes: " + Escape(*notes))
	}
	return b.String()
}

// FormatUpdateMenu карточка записи перед редактированием
func FormatUpdateMenu(b *domain.Birthday) string {
	return fmt.Sprintf(UpdateMenu,
		Escape(b.Name),
		b.DateString(),
		b.Category.Label(),
		yesNo(b.HasImage()),
		yesNo(b.HasNotes()),
	)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func markers(b *domain.Birthday) string {
	var s string
	if b.HasImage() {
		s += " 📷"
	}
	if b.HasNotes() {
		s += " 📝"
	}
	return s
}

// BirthdayLine строка списка: имя, дата, возраст и отметки о фото/заметках
func BirthdayLine(b *domain.Birthday, age int) string {
	return fmt.Sprintf("• <b>%s</b> - %s (Age: %d)%s\n",
		Escape(b.Name), b.BirthDate.Format(longDateLayout), age, markers(b))
}

// FormatBirthdayList список пользователя, сгруппированный по категориям
func FormatBirthdayList(groups []CategoryGroup) string {
	var b strings.Builder
	b.WriteString(MyBirthdaysHeader)
	for _, g := range groups {
		b.WriteString("<b>" + g.Category.Label() + "</b>\n")
		for _, line := range g.Lines {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return Truncate(b.String(), MyBirthdaysTruncated)
}

// CategoryGroup готовые строки одной категории
type CategoryGroup struct {
	Category domain.Category
	Lines    []string
}

// FormatCategoryList записи одной категории
func FormatCategoryList(c domain.Category, lines []string) string {
	if len(lines) == 0 {
		return fmt.Sprintf(CategoryEmpty, c.Label())
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(CategoryHeader, c.Label()))
	for _, line := range lines {
		b.WriteString(line)
	}
	return Truncate(b.String(), MyBirthdaysTruncated)
}

// FormatMonthList записи за месяц с категориями
func FormatMonthList(month time.Month, records []*domain.Birthday, ages []int) string {
	if len(records) == 0 {
		return fmt.Sprintf(MonthEmpty, month)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(MonthHeader, month))
	for i, r := range records {
		b.WriteString(fmt.Sprintf("• <b>%s</b> - %s (Age: %d)\n", Escape(r.Name), r.BirthDate.Format(longDateLayout), ages[i]))
		b.WriteString("  🏷️ " + r.Category.Label() + markers(r) + "\n\n")
	}
	return Truncate(b.String(), MyBirthdaysTruncated)
}

// FormatUserStats статистика пользователя для /my_stats
func FormatUserStats(s analytics.UserSummary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Your Birthday Statistics:</b>\n\n")

	b.WriteString("📈 <b>Overview:</b>\n")
	b.WriteString(fmt.Sprintf("• Total birthdays: %d\n", s.TotalBirthdays))
	b.WriteString(fmt.Sprintf("• Upcoming this month: %d\n", s.UpcomingThisMonth))
	b.WriteString(fmt.Sprintf("• Average age: %.1f years\n", s.AverageAge))
	b.WriteString(fmt.Sprintf("• Age range: %d-%d years\n\n", s.AgeRange.Min, s.AgeRange.Max))

	if s.NextBirthday != nil {
		next := s.NextBirthday
		b.WriteString("🎯 <b>Next Birthday:</b>\n")
		b.WriteString(fmt.Sprintf("<b>%s</b> in %d days (%s) - %s\n\n",
			Escape(next.Name), next.DaysUntil, next.Date.Format(shortDateLayout), next.Category.Label()))
	}

	if len(s.CategoryBreakdown) > 0 {
		b.WriteString("🏷️ <b>Categories:</b>\n")
		for _, c := range s.CategoryBreakdown {
			pct := float64(c.Count) / float64(s.TotalBirthdays) * 100
			b.WriteString(fmt.Sprintf("• %s: %d (%.1f%%)\n", c.Label, c.Count, pct))
		}
		b.WriteString("\n")
	}

	top := topMonths(s.MonthlyDistribution, 3)
	if len(top) > 0 {
		b.WriteString("📅 <b>Top Birth Months:</b>\n")
		for _, m := range top {
			b.WriteString(fmt.Sprintf("• %s: %d\n", m.Name, m.Count))
		}
	}

	return b.String()
}

// topMonths до n месяцев с ненулевым количеством, по убыванию; при равенстве раньше идёт ранний месяц
func topMonths(months []analytics.MonthCount, n int) []analytics.MonthCount {
	sorted := make([]analytics.MonthCount, 0, len(months))
	for _, m := range months {
		if m.Count > 0 {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FormatAdminUserStats статистика пользователя для администратора
func FormatAdminUserStats(u *domain.User, s analytics.UserSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Admin: Stats for User %d:</b>\n", u.ID))
	b.WriteString("Username: " + Escape(u.DisplayUsername()) + "\n")
	b.WriteString("Name: " + Escape(u.DisplayFirstName()) + "\n")
	b.WriteString("Timezone: " + Escape(u.Timezone) + "\n")
	b.WriteString("Created: " + u.CreatedAt.Format(domain.DateLayout) + "\n\n")

	if s.TotalBirthdays == 0 {
		b.WriteString("📝 No birthdays found for this user.")
		return b.String()
	}

	b.WriteString("📈 <b>Birthday Statistics:</b>\n")
	b.WriteString(fmt.Sprintf("• Total birthdays: %d\n", s.TotalBirthdays))
	b.WriteString(fmt.Sprintf("• Average age: %.1f years\n", s.AverageAge))
	b.WriteString(fmt.Sprintf("• Upcoming this month: %d\n\n", s.UpcomingThisMonth))

	if len(s.CategoryBreakdown) > 0 {
		b.WriteString("🏷️ <b>Categories:</b>\n")
		for _, c := range s.CategoryBreakdown {
			b.WriteString(fmt.Sprintf("• %s: %d\n", c.Label, c.Count))
		}
		b.WriteString("\n")
	}

	if s.NextBirthday != nil {
		b.WriteString(fmt.Sprintf("🎯 <b>Next birthday:</b> %s in %d days (%s)",
			Escape(s.NextBirthday.Name), s.NextBirthday.DaysUntil, s.NextBirthday.Category.Label()))
	}
	return b.String()
}

// FormatAnalytics отчёт /analytics
func FormatAnalytics(a analytics.SystemSummary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Comprehensive Analytics Report</b>\n\n")

	o := a.Overview
	b.WriteString("📈 <b>Overview:</b>\n")
	b.WriteString(fmt.Sprintf("• Total Users: %d\n", o.TotalUsers))
	b.WriteString(fmt.Sprintf("• Total Birthdays: %d\n", o.TotalBirthdays))
	b.WriteString(fmt.Sprintf("• Active Birthdays: %d\n", o.ActiveBirthdays))
	b.WriteString(fmt.Sprintf("• Deleted Birthdays: %d\n", o.DeletedBirthdays))
	b.WriteString(fmt.Sprintf("• Deletion Rate: %.1f%%\n\n", o.DeletionRate))

	u := a.UserActivity
	b.WriteString("👥 <b>User Activity:</b>\n")
	b.WriteString(fmt.Sprintf("• Active Users: %d\n", u.TotalActiveUsers))
	b.WriteString(fmt.Sprintf("• Avg Birthdays/User: %.1f\n", u.AverageBirthdaysPerUser))
	b.WriteString(fmt.Sprintf("• Most by Single User: %d\n\n", u.MostBirthdaysBySingleUser))

	b.WriteString("🏷️ <b>Category Distribution:</b>\n")
	for _, c := range a.CategoryDistribution {
		b.WriteString(fmt.Sprintf("• %s: %d (%.1f%%)\n", c.Label, c.Count, c.Percentage))
	}
	b.WriteString("\n")

	e := a.Engagement
	b.WriteString("💡 <b>Engagement:</b>\n")
	b.WriteString(fmt.Sprintf("• Photos Added: %d (%.1f%%)\n", e.WithImages, e.ImageUsageRate))
	b.WriteString(fmt.Sprintf("• Notes Added: %d (%.1f%%)\n\n", e.WithNotes, e.NotesUsageRate))

	s := a.AgeStatistics
	b.WriteString("🎂 <b>Age Analysis:</b>\n")
	b.WriteString(fmt.Sprintf("• Average Age: %.1f years\n", s.Average))
	b.WriteString(fmt.Sprintf("• Age Range: %d-%d years\n", s.Min, s.Max))
	b.WriteString(fmt.Sprintf("• Median Age: %d years\n", s.Median))

	return b.String()
}

// FormatAdminStats панель /admin_stats
func FormatAdminStats(users, active, deleted int) string {
	var b strings.Builder
	b.WriteString("👑 <b>Admin Dashboard:</b>\n\n")
	b.WriteString("📊 <b>Quick Stats:</b>\n")
	b.WriteString(fmt.Sprintf("• Total Users: %d\n", users))
	b.WriteString(fmt.Sprintf("• Active Birthdays: %d\n", active))
	b.WriteString(fmt.Sprintf("• Deleted Birthdays: %d\n", deleted))
	b.WriteString(fmt.Sprintf("• Total Database Entries: %d\n", active+deleted))
	if users > 0 {
		b.WriteString(fmt.Sprintf("• Average per User: %.1f\n", float64(active)/float64(users)))
	}
	if active+deleted > 0 {
		b.WriteString(fmt.Sprintf("• Deletion Rate: %.1f%%\n", float64(deleted)/float64(active+deleted)*100))
	}
	b.WriteString(AdminCommandsList)
	return b.String()
}

// FormatAdminBirthdays список всех записей; удалённые выводятся отдельным блоком
func FormatAdminBirthdays(records []*domain.Birthday, includeDeleted bool) string {
	if len(records) == 0 {
		return AdminNoBirthdays
	}

	line := func(r *domain.Birthday) string {
		return fmt.Sprintf("• <b>%s</b> (%s) - User: %d - %s%s\n",
			Escape(r.Name), r.DateString(), r.UserID, r.Category.Label(), markers(r))
	}

	var b strings.Builder
	if !includeDeleted {
		b.WriteString("👑 <b>Active Birthdays (Admin View):</b>\n\n")
		for i, r := range records {
			if i == 20 {
				b.WriteString(fmt.Sprintf("\n... and %d more entries.", len(records)-20))
				break
			}
			b.WriteString(line(r))
		}
	} else {
		var active, deleted []*domain.Birthday
		for _, r := range records {
			if r.IsDeleted {
				deleted = append(deleted, r)
			} else {
				active = append(active, r)
			}
		}

		b.WriteString("👑 <b>All Birthdays (Admin View):</b>\n\n")
		b.WriteString(fmt.Sprintf("✅ <b>Active (%d):</b>\n", len(active)))
		for i, r := range active {
			if i == 10 {
				b.WriteString(fmt.Sprintf("... and %d more active birthdays\n", len(active)-10))
				break
			}
			b.WriteString(line(r))
		}
		b.WriteString(fmt.Sprintf("\n🗑️ <b>Deleted (%d):</b>\n", len(deleted)))
		for i, r := range deleted {
			if i == 5 {
				b.WriteString(fmt.Sprintf("... and %d more deleted birthdays\n", len(deleted)-5))
				break
			}
			b.WriteString(line(r))
		}
	}

	b.WriteString(fmt.Sprintf("\n\n<b>Total: %d birthdays</b>", len(records)))
	return Truncate(b.String(), "")
}

// FormatTodayReminder напоминание в день рождения
func FormatTodayReminder(items []domain.ReminderItem) string {
	var b strings.Builder
	if len(items) == 1 {
		it := items[0]
		b.WriteString("🎉 <b>Birthday Reminder!</b> 🎂\n\n")
		b.WriteString(fmt.Sprintf("Today is <b>%s</b>'s birthday!\n", Escape(it.Name)))
		b.WriteString(fmt.Sprintf("🎈 They are turning <b>%d years old</b> today\n", it.Age))
		b.WriteString("🏷️ Category: " + it.Category.Label() + "\n")
		if it.HasImage() {
			b.WriteString(fmt.Sprintf("📷 <a href=\"%s\">View Photo</a>\n", Escape(*it.ImageURL)))
		}
		if it.HasNotes() {
			b.WriteString("📝 Notes: " + Escape(*it.Notes) + "\n")
		}
		b.WriteString("\nDon't forget to wish them a happy birthday! 🎈")
		return b.String()
	}

	b.WriteString("🎉 <b>Birthday Reminders!</b> 🎂\n\nToday's birthdays:\n\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("• <b>%s</b> (turning %d) - %s%s\n", Escape(it.Name), it.Age, it.Category.Label(), itemMarkers(it)))
	}
	b.WriteString("\nDon't forget to wish them happy birthdays! 🎈")
	return b.String()
}

// FormatUpcomingReminder напоминание о ближайших днях рождения
func FormatUpcomingReminder(items []domain.ReminderItem) string {
	var b strings.Builder
	b.WriteString("📅 <b>Upcoming Birthdays:</b> 🎂\n\n")
	for _, it := range items {
		when := "tomorrow"
		if it.DaysAhead != 1 {
			when = fmt.Sprintf("in %d days", it.DaysAhead)
		}
		b.WriteString(fmt.Sprintf("• <b>%s</b> %s (turning %d)\n", Escape(it.Name), when, it.Age))
		b.WriteString("  🏷️ " + it.Category.Label() + itemMarkers(it) + "\n\n")
	}
	b.WriteString("Get ready to celebrate! 🎉")
	return b.String()
}

func itemMarkers(it domain.ReminderItem) string {
	var s string
	if it.HasImage() {
		s += " 📷"
	}
	if it.HasNotes() {
		s += " 📝"
	}
	return s
}

// FormatBroadcast текст рассылки
func FormatBroadcast(message string) string {
	return "📢 <b>Broadcast Message:</b>\n\n" + Escape(message)
}

func FormatBroadcastStarted(users int) string {
	return fmt.Sprintf("📢 Starting broadcast to %d users...", users)
}

func FormatBroadcastDone(report domain.DeliveryReport) string {
	return fmt.Sprintf("📢 <b>Broadcast Complete:</b>\n✅ Successful: %d\n❌ Failed: %d", report.Sent, report.Failed)
}

// FormatExportCaption подпись к CSV; link - presigned ссылка на архивную копию
func FormatExportCaption(includeDeleted bool, link string) string {
	caption := fmt.Sprintf("📊 Birthday database export (%s data)", ExportScope(includeDeleted))
	if link != "" {
		caption += fmt.Sprintf("\n🔗 <a href=\"%s\">Archived copy</a> (link valid 24h)", Escape(link))
	}
	return caption
}

// ExportScope active или complete
func ExportScope(includeDeleted bool) string {
	if includeDeleted {
		return "complete"
	}
	return "active"
}

func FormatTimezoneCurrent(tz string) string {
	return fmt.Sprintf(TimezoneCurrent, Escape(tz))
}

func FormatTimezoneSet(tz string) string {
	return fmt.Sprintf(TimezoneSet, Escape(tz))
}

func FormatUserNotFound(id int64) string {
	return fmt.Sprintf("❌ User %d not found.", id)
}

// Truncate обрезает сообщение до MessageLimit; suffix дописывается после обрезки
func Truncate(s string, suffix string) string {
	if len(s) <= MessageLimit {
		return s
	}
	cut := MessageLimit - 100
	// не режем посреди UTF-8 последовательности
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut] + "...\n\n" + suffix
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
