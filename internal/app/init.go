package app

import (
	"context"
	"fmt"
	"net/http"

	server "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http/controllers/admin"
	healthcheckController "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http/controllers/telegram"
	kafkaConsumerAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/cache"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/repository"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
	birthdayRepo "github.com/admin/tg-bots/birthday-bot/internal/repository/birthday"
	userRepo "github.com/admin/tg-bots/birthday-bot/internal/repository/user"
	alerterService "github.com/admin/tg-bots/birthday-bot/internal/services/alerter"
	jobScheduler "github.com/admin/tg-bots/birthday-bot/internal/services/jobs"
	telegramService "github.com/admin/tg-bots/birthday-bot/internal/services/telegram"
	birthdayUsecase "github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramPoller  *tgAdapter.Poller
	KafkaProducer   *kafkaAdapter.Producer
	KafkaConsumer   *kafkaConsumerAdapter.Consumer
	Cache           cache.Cache
	JobScheduler    *jobScheduler.Scheduler
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	deps := &Dependencies{}

	repos, db, err := a.initRepositories(ctx)
	if err != nil {
		return nil, err
	}
	deps.DB = db

	if a.Cfg.Admin.SuperadminID != 0 {
		if err := repos.User.EnsureSuperadmin(ctx, a.Cfg.Admin.SuperadminID); err != nil {
			return nil, fmt.Errorf("failed to ensure superadmin: %w", err)
		}
		a.Log.Info("superadmin ensured", "user_id", a.Cfg.Admin.SuperadminID)
	} else {
		a.Log.Warn("superadmin id is not set, admin commands are available only to flagged users")
	}

	redisClient := a.initCache()
	deps.Cache = inmemory.NewCache()
	if redisClient != nil {
		deps.Cache = redisClient
	}

	tgClient := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	alerter := alerterService.New(alerterAdapter.NewClient(a.Cfg.Alerter, tgClient, a.Log))

	birthdaySvc := birthdayUsecase.New(
		repos.User,
		repos.Birthday,
		tgClient,
		deps.Cache,
		birthdayUsecase.Config{
			SuperadminID:       a.Cfg.Admin.SuperadminID,
			MatcherConcurrency: a.Cfg.Reminders.MatcherConcurrency,
			ExportLinkTTL:      a.Cfg.S3.LinkTTL,
		},
		a.Log,
	)
	birthdaySvc.AlerterService = alerter

	if err := a.initStorage(birthdaySvc); err != nil {
		return nil, err
	}

	deps.KafkaProducer, deps.KafkaConsumer = a.initKafka(birthdaySvc)
	if deps.KafkaProducer != nil {
		birthdaySvc.Publisher = deps.KafkaProducer
	}

	deps.TelegramService = telegramService.New(birthdaySvc, tgClient, a.Log)
	if err := a.initTelegramMode(ctx, deps, tgClient); err != nil {
		return nil, fmt.Errorf("failed to init telegram mode: %w", err)
	}

	deps.HTTPServer = a.initHTTP(db, redisClient, deps.TelegramService, birthdaySvc)

	if !a.Cfg.Reminders.Disabled {
		deps.JobScheduler = a.initJobScheduler(alerter, birthdaySvc)
	}

	return deps, nil
}

type repositories struct {
	User     repository.IUserRepo
	Birthday repository.IBirthdayRepo
}

// initRepositories Postgres, если он настроен; иначе in-memory хранилище
func (a *App) initRepositories(ctx context.Context) (*repositories, *sqlx.DB, error) {
	if !a.Cfg.Postgres.Enabled() {
		a.Log.Warn("postgres is not configured, data will be kept in memory only")
		store := inmemory.NewStore()
		return &repositories{User: store, Birthday: store}, nil, nil
	}

	db, err := a.initPostgres(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	persistenceLayer := pg.NewDB(db)
	return &repositories{
		User:     userRepo.New(persistenceLayer, a.Log),
		Birthday: birthdayRepo.New(persistenceLayer, persistenceLayer, a.Log),
	}, db, nil
}

// initPostgres подключение и миграции
func (a *App) initPostgres(ctx context.Context) (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.Log.Info("postgres connected successfully")

	if a.Cfg.Postgres.MigrateOnStart {
		if err := pg.RunMigrations(ctx, db, a.Log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return db, nil
}

// initCache Redis опционален: при ошибке подключения работаем на in-memory кэше
func (a *App) initCache() *redisAdapter.Client {
	if !a.Cfg.Redis.Enabled() {
		a.Log.Warn("redis is not configured, using in-memory cache")
		return nil
	}

	rdb, err := a.Cfg.Redis.NewConnection()
	if err != nil {
		a.Log.Warn("failed to init redis cache, continuing with in-memory cache", "error", err)
		return nil
	}

	a.Log.Info("redis cache connected successfully")
	return redisAdapter.NewClient(rdb, a.Cfg.Redis.KeyPrefix)
}

// initStorage архив CSV-экспортов в S3 (MinIO)
func (a *App) initStorage(birthdaySvc *birthdayUsecase.Service) error {
	if !a.Cfg.S3.Enabled() {
		a.Log.Info("s3 is not configured, export archive disabled")
		return nil
	}

	minioClient, err := a.Cfg.S3.NewClient()
	if err != nil {
		return fmt.Errorf("failed to init s3: %w", err)
	}

	birthdaySvc.Storage = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
	a.Log.Info("s3 export archive enabled", "bucket", a.Cfg.S3.Bucket)
	return nil
}

// initKafka producer публикует события напоминаний, consumer доставляет их.
// Они могут жить в разных инстансах: без consumer group здесь только публикуем.
func (a *App) initKafka(birthdaySvc *birthdayUsecase.Service) (*kafkaAdapter.Producer, *kafkaConsumerAdapter.Consumer) {
	cfg := a.Cfg.Kafka.Find(kafkaRemindersName)
	if cfg == nil || cfg.Topic == "" {
		a.Log.Info("kafka is not configured, reminders are delivered directly")
		return nil, nil
	}

	producer, err := kafkaAdapter.NewProducer(cfg, a.Log)
	if err != nil {
		a.Log.Warn("failed to create kafka producer, reminders are delivered directly", "error", err)
		return nil, nil
	}

	if cfg.ConsumerGroup == "" {
		return producer, nil
	}

	handler := kafkaHandlers.NewReminderHandler(birthdaySvc, a.Log)
	consumer, err := kafkaConsumerAdapter.NewConsumer(cfg, handler, a.Log)
	if err != nil {
		// без consumer события некому доставлять
		a.Log.Warn("failed to create kafka consumer, reminders are delivered directly", "error", err)
		_ = producer.Close()
		return nil, nil
	}

	return producer, consumer
}

// initTelegramMode webhook в проде, long polling локально
func (a *App) initTelegramMode(ctx context.Context, deps *Dependencies, tgClient *tgAdapter.Client) error {
	webhookURL := ""
	if a.Cfg.Telegram.IsWebhookEnabled() {
		if a.Cfg.Telegram.WebhookURL == "" {
			return fmt.Errorf("webhook_url is required when use_webhook is true")
		}
		webhookURL = a.Cfg.Telegram.WebhookURL + "/webhook/"
	}

	if err := deps.TelegramService.Configure(ctx, webhookURL, a.Cfg.Telegram.WebhookSecret); err != nil {
		return err
	}

	if webhookURL != "" {
		a.Log.Info("telegram updates mode: webhook", "webhook_url", webhookURL)
		return nil
	}

	a.Log.Warn("polling mode enabled - this should only be used for local development")
	deps.TelegramPoller = tgAdapter.NewPoller(tgClient, a.Cfg.Telegram, deps.TelegramService.HandleUpdate, a.Log)
	return nil
}

// initHTTP health, webhook и admin API (если задан JWT секрет)
func (a *App) initHTTP(
	db *sqlx.DB,
	redisClient *redisAdapter.Client,
	tgService *telegramService.Service,
	birthdaySvc *birthdayUsecase.Service,
) *http.Server {
	readiness := map[string]healthcheckController.Pinger{}
	if db != nil {
		readiness["postgres"] = pg.NewDB(db)
	}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}

	controllers := []server.Controller{
		healthcheckController.New(readiness, a.Log),
		telegramController.New(tgService, a.Cfg.Telegram.WebhookSecret, a.Log),
	}

	if a.Cfg.Admin.JWTSecret != "" {
		controllers = append(controllers, adminController.New(birthdaySvc, a.Cfg.Admin.JWTSecret, a.Log))
	} else {
		a.Log.Warn("admin jwt secret is not set, admin api disabled")
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// initJobScheduler ежедневная проверка сегодняшних и еженедельная - ближайших дней рождения
func (a *App) initJobScheduler(alerterSvc service.IAlerterService, reminders service.IReminderService) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log, alerterSvc)

	scheduler.Register(jobScheduler.NewTodayReminders(reminders, a.Cfg.Reminders.DailyHour, a.Log))
	scheduler.Register(jobScheduler.NewUpcomingReminders(reminders, a.Cfg.Reminders.WeeklyDay, a.Cfg.Reminders.WeeklyHour, a.Log))

	a.Log.Info("reminder jobs registered",
		"daily_hour", a.Cfg.Reminders.DailyHour,
		"weekly_day", a.Cfg.Reminders.WeeklyDay,
		"weekly_hour", a.Cfg.Reminders.WeeklyHour,
	)
	return scheduler
}
