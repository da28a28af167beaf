package kafka

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IReminderPublisher публикует события напоминаний в Kafka
type IReminderPublisher interface {
	PublishReminder(ctx context.Context, event *domain.ReminderEvent) error
	Close() error
}
