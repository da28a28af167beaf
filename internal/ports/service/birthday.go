package service

import (
	"context"
	"io"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/analytics"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IReminderService рассылка напоминаний (для jobs и admin API)
type IReminderService interface {
	SendTodayReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error)
	SendUpcomingReminders(ctx context.Context, now time.Time) (domain.DeliveryReport, error)
	DeliverReminder(ctx context.Context, event *domain.ReminderEvent) error
}

// IAnalyticsService отчёты для admin API
type IAnalyticsService interface {
	ComputeUserStats(ctx context.Context, userID int64) (analytics.UserSummary, error)
	ComputeSystemAnalytics(ctx context.Context) (analytics.SystemSummary, error)
	WriteExportCSV(ctx context.Context, w io.Writer, includeDeleted bool) error
}
