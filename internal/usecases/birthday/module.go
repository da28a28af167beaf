package birthday

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/pkg/timezone"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/cache"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/storage"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/birthday-bot/internal/reminder"
	"github.com/microcosm-cc/bluemonday"
)

const (
	conversationTTL      = time.Hour
	reminderDedupTTL     = 72 * time.Hour
	defaultExportLinkTTL = 24 * time.Hour
)

// Config параметры сервиса, не связанные с зависимостями
type Config struct {
	SuperadminID       int64
	MatcherConcurrency int
	ExportLinkTTL      time.Duration
}

// Service бизнес-логика бота дней рождения
type Service struct {
	UserRepo       repository.IUserRepo
	BirthdayRepo   repository.IBirthdayRepo
	TelegramClient telegram.IClient
	Cache          cache.Cache
	Resolver       *timezone.Resolver
	Matcher        *reminder.Matcher

	// опциональные зависимости, nil - функция отключена
	Publisher      kafka.IReminderPublisher
	Storage        storage.IS3Client
	AlerterService service.IAlerterService

	SuperadminID  int64
	ExportLinkTTL time.Duration

	sanitizer *bluemonday.Policy
	now       func() time.Time
	Log       *slog.Logger
}

// New создаёт сервис; cache обязателен (Redis или in-memory)
func New(
	userRepo repository.IUserRepo,
	birthdayRepo repository.IBirthdayRepo,
	telegramClient telegram.IClient,
	cache cache.Cache,
	cfg Config,
	log *slog.Logger,
) *Service {
	resolver := timezone.NewResolver(log)

	linkTTL := cfg.ExportLinkTTL
	if linkTTL <= 0 {
		linkTTL = defaultExportLinkTTL
	}

	return &Service{
		UserRepo:       userRepo,
		BirthdayRepo:   birthdayRepo,
		TelegramClient: telegramClient,
		Cache:          cache,
		Resolver:       resolver,
		Matcher:        reminder.NewMatcher(userRepo, birthdayRepo, resolver, cfg.MatcherConcurrency, log),
		SuperadminID:   cfg.SuperadminID,
		ExportLinkTTL:  linkTTL,
		sanitizer:      bluemonday.StrictPolicy(),
		now:            time.Now,
		Log:            log,
	}
}

// WithClock подменяет источник времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
