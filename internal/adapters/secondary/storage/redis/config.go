package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxRetries      = 3
	defaultDialTimeout     = 5 * time.Second
	defaultReadTimeout     = 3 * time.Second
	defaultWriteTimeout    = 3 * time.Second
	defaultPoolSize        = 10
	defaultMinIdleConns    = 2
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

type Config struct {
	Host            string `envconfig:"HOST"`
	Port            string `envconfig:"PORT" default:"6379"`
	Username        string `envconfig:"USERNAME"`
	Password        string `envconfig:"PASSWORD"`
	Database        int    `envconfig:"DATABASE" default:"0"`
	KeyPrefix       string `envconfig:"KEY_PREFIX" default:"birthday_bot:"`
	MaxRetries      int    `envconfig:"MAX_RETRIES" default:"3"`
	DialTimeout     int    `envconfig:"DIAL_TIMEOUT" default:"5"`  // в секундах
	ReadTimeout     int    `envconfig:"READ_TIMEOUT" default:"3"`  // в секундах
	WriteTimeout    int    `envconfig:"WRITE_TIMEOUT" default:"3"` // в секундах
	PoolSize        int    `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns    int    `envconfig:"MIN_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" default:"30"` // в минутах
	ConnMaxIdleTime int    `envconfig:"CONN_MAX_IDLE_TIME" default:"5"` // в минутах
}

// Enabled без хоста используется in-memory кэш
func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

func orDefault(value time.Duration, def time.Duration) time.Duration {
	if value <= 0 {
		return def
	}
	return value
}

func orDefaultInt(value, def int) int {
	if value <= 0 {
		return def
	}
	return value
}

func (c *Config) options() *redis.Options {
	maxRetries := c.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &redis.Options{
		Addr:            fmt.Sprintf("%s:%s", c.Host, c.Port),
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.Database,
		MaxRetries:      maxRetries,
		DialTimeout:     orDefault(time.Duration(c.DialTimeout)*time.Second, defaultDialTimeout),
		ReadTimeout:     orDefault(time.Duration(c.ReadTimeout)*time.Second, defaultReadTimeout),
		WriteTimeout:    orDefault(time.Duration(c.WriteTimeout)*time.Second, defaultWriteTimeout),
		PoolSize:        orDefaultInt(c.PoolSize, defaultPoolSize),
		MinIdleConns:    orDefaultInt(c.MinIdleConns, defaultMinIdleConns),
		ConnMaxLifetime: orDefault(time.Duration(c.ConnMaxLifetime)*time.Minute, defaultConnMaxLifetime),
		ConnMaxIdleTime: orDefault(time.Duration(c.ConnMaxIdleTime)*time.Minute, defaultConnMaxIdleTime),
	}
}

// NewConnection создаёт подключение к Redis и проверяет его
func (c *Config) NewConnection() (*redis.Client, error) {
	opts := c.options()
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
