package app

import (
	"fmt"
	"time"

	server "github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/birthday-bot/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const dotenvPath = "deployments/local/.env"

// kafkaRemindersName имя Kafka-подключения для событий напоминаний
const kafkaRemindersName = "reminders"

// Config секции без хоста (Postgres, Redis, S3) отключают компонент;
// Postgres и Redis тогда заменяются in-memory реализациями.
type Config struct {
	Postgres  *pg.Config                `envconfig:"POSTGRES"`
	Log       *logger.Config            `envconfig:"LOG"`
	Server    *server.Config            `envconfig:"APISERVER"`
	Telegram  *telegram.Config          `envconfig:"TELEGRAM"`
	Redis     *redisAdapter.Config      `envconfig:"REDIS"`
	S3        *s3Adapter.Config         `envconfig:"S3"`
	Alerter   *alerterAdapter.Config    `envconfig:"ALERTER"`
	Admin     *AdminConfig              `envconfig:"ADMIN"`
	Reminders *RemindersConfig          `envconfig:"REMINDERS"`
	Kafka     kafkaAdapter.KafkaConfigs `envconfig:"KAFKA"`
}

type AdminConfig struct {
	SuperadminID int64 `envconfig:"SUPERADMIN_ID"`
	// JWTSecret пустой - admin API не поднимается
	JWTSecret string `envconfig:"JWT_SECRET"`
}

type RemindersConfig struct {
	DailyHour          int          `envconfig:"DAILY_HOUR" default:"9"`
	WeeklyDay          time.Weekday `envconfig:"WEEKLY_DAY" default:"0"`
	WeeklyHour         int          `envconfig:"WEEKLY_HOUR" default:"8"`
	MatcherConcurrency int          `envconfig:"MATCHER_CONCURRENCY" default:"8"`
	// Disabled выключает планировщик (напоминания остаются доступны через admin API)
	Disabled bool `envconfig:"DISABLED" default:"false"`
}

func (c *RemindersConfig) Validate() error {
	if c.DailyHour < 0 || c.DailyHour > 23 {
		return fmt.Errorf("daily hour must be in 0..23, got %d", c.DailyHour)
	}
	if c.WeeklyHour < 0 || c.WeeklyHour > 23 {
		return fmt.Errorf("weekly hour must be in 0..23, got %d", c.WeeklyHour)
	}
	if c.WeeklyDay < time.Sunday || c.WeeklyDay > time.Saturday {
		return fmt.Errorf("weekly day must be in 0..6, got %d", c.WeeklyDay)
	}
	return nil
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	_ = godotenv.Load(dotenvPath)
	return loadConfig(envPrefix)
}

func loadConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	// envconfig не умеет определять размер слайса
	if err := cfg.Kafka.Load(envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}

	if err := cfg.Reminders.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reminders config: %w", err)
	}

	return cfg, nil
}
