package birthday

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

// Broadcast рассылает сообщение всем активным пользователям.
// Ошибка отправки одному пользователю учитывается в отчёте и не прерывает рассылку.
func (s *Service) Broadcast(ctx context.Context, message string) (domain.DeliveryReport, error) {
	users, err := s.UserRepo.GetActiveUsers(ctx)
	if err != nil {
		return domain.DeliveryReport{}, fmt.Errorf("failed to get users for broadcast: %w", err)
	}

	report := domain.DeliveryReport{Users: len(users)}
	text := texts.FormatBroadcast(message)

	for _, u := range users {
		if ctx.Err() != nil {
			report.Skipped += len(users) - report.Sent - report.Failed
			break
		}
		if err := s.TelegramClient.SendMessage(ctx, u.ReplyChatID(), text); err != nil {
			report.Failed++
			s.Log.Warn("broadcast delivery failed", "error", err, "user_id", u.ID)
			continue
		}
		report.Sent++
	}

	s.Log.Info("broadcast finished", "users", report.Users, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
