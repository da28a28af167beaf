package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss ключ отсутствует или истёк
var ErrMiss = errors.New("cache: key not found")

// Cache интерфейс для работы с кэшем
type Cache interface {
	// Get возвращает ErrMiss, если ключа нет
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetNX записывает значение, только если ключа ещё нет; true - записано
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
