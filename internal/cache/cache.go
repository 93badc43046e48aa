package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// BlacklistCache — минимальный контракт кэша денайлиста jti.
// Кэш ускоряет путь проверки access-токена; источником истины остаётся БД.
type BlacklistCache interface {
	// Get возвращает признак "jti в денайлисте" и признак наличия ключа в кэше.
	Get(ctx context.Context, jti string) (blacklisted, ok bool, err error)
	// SetBlacklisted помечает jti отозванным с TTL (обычно expires_at-now).
	SetBlacklisted(ctx context.Context, jti string, ttl time.Duration) error
	// SetClean кэширует отрицательный ответ на короткий TTL.
	SetClean(ctx context.Context, jti string, ttl time.Duration) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
func NewRedisCache(ctx context.Context, redisURL string) (BlacklistCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: "session:bl:"}, nil
}

func (c *redisCache) key(jti string) string { return c.prefix + jti }

// Храним строку "1" (в денайлисте) либо "0" (проверен, чист).
func (c *redisCache) Get(ctx context.Context, jti string) (bool, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(jti)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, false, nil
		}

		return false, false, err
	}

	return v == "1", true, nil
}

func (c *redisCache) SetBlacklisted(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *redisCache) SetClean(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(jti), "0", ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
