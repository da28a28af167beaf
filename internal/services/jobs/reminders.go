package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
)

const (
	todayRemindersName    = "today-birthdays-check"
	upcomingRemindersName = "upcoming-birthdays-check"
)

// TodayReminders ежедневная рассылка напоминаний о сегодняшних днях рождения, в hour:00 UTC
type TodayReminders struct {
	reminders service.IReminderService
	hour      int
	log       *slog.Logger
}

func NewTodayReminders(reminders service.IReminderService, hour int, log *slog.Logger) *TodayReminders {
	return &TodayReminders{
		reminders: reminders,
		hour:      hour,
		log:       log,
	}
}

func (j *TodayReminders) Name() string {
	return todayRemindersName
}

// NextRun ближайшее hour:00 UTC строго после now
func (j *TodayReminders) NextRun(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (j *TodayReminders) Run(ctx context.Context) error {
	report, err := j.reminders.SendTodayReminders(ctx, time.Now())
	if err != nil {
		return err
	}
	j.log.Info("today reminders job finished",
		"users", report.Users,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return nil
}

// UpcomingReminders еженедельная рассылка о днях рождения в ближайшие дни
type UpcomingReminders struct {
	reminders service.IReminderService
	weekday   time.Weekday
	hour      int
	log       *slog.Logger
}

func NewUpcomingReminders(reminders service.IReminderService, weekday time.Weekday, hour int, log *slog.Logger) *UpcomingReminders {
	return &UpcomingReminders{
		reminders: reminders,
		weekday:   weekday,
		hour:      hour,
		log:       log,
	}
}

func (j *UpcomingReminders) Name() string {
	return upcomingRemindersName
}

// NextRun ближайший weekday в hour:00 UTC строго после now
func (j *UpcomingReminders) NextRun(now time.Time) time.Time {
	now = now.UTC()
	days := (int(j.weekday) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day()+days, j.hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (j *UpcomingReminders) Run(ctx context.Context) error {
	report, err := j.reminders.SendUpcomingReminders(ctx, time.Now())
	if err != nil {
		return err
	}
	j.log.Info("upcoming reminders job finished",
		"users", report.Users,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return nil
}
