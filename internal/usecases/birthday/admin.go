package birthday

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/engine"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
)

var adminCommands = map[string]struct{}{
	"admin_stats":   {},
	"all_birthdays": {},
	"user_stats":    {},
	"export_csv":    {},
	"analytics":     {},
	"broadcast":     {},
}

func isAdminCommand(command string) bool {
	_, ok := adminCommands[command]
	return ok
}

// isSuperadmin флаг в БД или id из конфигурации
func (s *Service) isSuperadmin(user *domain.User) bool {
	return user.IsSuperadmin || (s.SuperadminID != 0 && user.ID == s.SuperadminID)
}

func (s *Service) handleAdminCommand(ctx context.Context, user *domain.User, command string, args string) error {
	chatID := user.ReplyChatID()
	s.Log.Info("admin command", "user_id", user.ID, "command", command)

	switch command {
	case "admin_stats":
		users, active, deleted, err := s.adminCounts(ctx)
		if err != nil {
			s.Log.Error("failed to collect admin stats", "error", err)
			return s.sendMessage(ctx, chatID, texts.GenericError)
		}
		return s.sendMessage(ctx, chatID, texts.FormatAdminStats(users, active, deleted))

	case "all_birthdays":
		kb := domain.NewInlineKeyboard(1,
			domain.InlineKeyboardButton{Text: texts.ButtonActive, CallbackData: cbAdminList + scopeActive},
			domain.InlineKeyboardButton{Text: texts.ButtonWithDeleted, CallbackData: cbAdminList + scopeAll},
		)
		return s.sendMessageWithKeyboard(ctx, chatID, texts.AdminViewMenu, kb)

	case "user_stats":
		return s.handleAdminUserStats(ctx, chatID, args)

	case "export_csv":
		kb := domain.NewInlineKeyboard(1,
			domain.InlineKeyboardButton{Text: texts.ButtonActive, CallbackData: cbExport + scopeActive},
			domain.InlineKeyboardButton{Text: texts.ButtonExportAll, CallbackData: cbExport + scopeAll},
		)
		return s.sendMessageWithKeyboard(ctx, chatID, texts.AdminExportMenu, kb)

	case "analytics":
		if err := s.sendMessage(ctx, chatID, texts.AdminAnalyticsWait); err != nil {
			return err
		}
		report, err := s.ComputeSystemAnalytics(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNoData) {
				return s.sendMessage(ctx, chatID, texts.AdminNoBirthdays)
			}
			s.Log.Error("failed to compute analytics", "error", err)
			return s.sendMessage(ctx, chatID, texts.GenericError)
		}
		return s.sendMessage(ctx, chatID, texts.FormatAnalytics(report))

	case "broadcast":
		return s.handleBroadcast(ctx, chatID, args)
	}
	return nil
}

func (s *Service) handleAdminUserStats(ctx context.Context, chatID int64, args string) error {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return s.sendMessage(ctx, chatID, texts.AdminUserStatsUsage)
	}
	id, err := strconv.ParseInt(strings.Fields(raw)[0], 10, 64)
	if err != nil {
		return s.sendMessage(ctx, chatID, texts.AdminBadUserID)
	}

	target, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return s.sendMessage(ctx, chatID, texts.FormatUserNotFound(id))
		}
		s.Log.Error("failed to get user", "error", err, "target_id", id)
		return s.sendMessage(ctx, chatID, texts.GenericError)
	}

	stats, err := s.ComputeUserStats(ctx, id)
	if err != nil {
		s.Log.Error("failed to compute user stats", "error", err, "target_id", id)
		return s.sendMessage(ctx, chatID, texts.GenericError)
	}
	return s.sendMessage(ctx, chatID, texts.FormatAdminUserStats(target, stats))
}

func (s *Service) handleBroadcast(ctx context.Context, chatID int64, args string) error {
	message := strings.TrimSpace(args)
	if message == "" {
		return s.sendMessage(ctx, chatID, texts.AdminBroadcastUsage)
	}

	users, err := s.UserRepo.Count(ctx)
	if err != nil {
		s.Log.Error("failed to count users", "error", err)
		return s.sendMessage(ctx, chatID, texts.GenericError)
	}
	if err := s.sendMessage(ctx, chatID, texts.FormatBroadcastStarted(users)); err != nil {
		return err
	}

	report, err := s.Broadcast(ctx, message)
	if err != nil {
		s.Log.Error("broadcast failed", "error", err)
		return s.sendMessage(ctx, chatID, texts.GenericError)
	}
	return s.sendMessage(ctx, chatID, texts.FormatBroadcastDone(report))
}

// onAdminCallback admin_list:<scope> и export:<scope>
func (s *Service) onAdminCallback(ctx context.Context, user *domain.User, msg *domain.Message, data string) error {
	if scope, ok := strings.CutPrefix(data, cbExport); ok {
		includeDeleted := scope == scopeAll
		if err := s.editMessage(ctx, msg, texts.AdminExporting, nil); err != nil {
			s.Log.Warn("failed to update export menu", "error", err)
		}
		return s.sendExport(ctx, user.ReplyChatID(), includeDeleted)
	}

	scope := strings.TrimPrefix(data, cbAdminList)
	includeDeleted := scope == scopeAll
	records, err := s.BirthdayRepo.GetAll(ctx, includeDeleted)
	if err != nil {
		s.Log.Error("failed to get all birthdays", "error", err)
		return s.sendMessage(ctx, user.ReplyChatID(), texts.GenericError)
	}
	return s.editMessage(ctx, msg, texts.FormatAdminBirthdays(records, includeDeleted), nil)
}

func ageOf(b *domain.Birthday, today time.Time) int {
	return engine.Age(*b, today)
}
