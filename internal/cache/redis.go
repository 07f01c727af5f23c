// Package cache содержит обвязку для Redis. Диспетчер использует его как
// необязательный страж от повторной отправки одного напоминания в пределах
// одного окна срабатывания; при недоступности Redis рассылка продолжается
// без защиты (семантика at-least-once сохраняется).
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/medication-reminder/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache обёртка над клиентом Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer создает клиент Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// AcquireOnce пытается захватить ключ на время ttl. Возвращает true, если
// ключ захвачен впервые, и false, если он уже существует (повторная отправка).
func (c *Cache) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.AcquireOnce"
	acquired, err := c.Db.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return acquired, nil
}
