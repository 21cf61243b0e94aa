package cache

import (
	"context"
	"encoding/json"
	"time"

	"venueplanner/core/config"
	"venueplanner/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is the redis-backed cache and pub/sub surface
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Publish(ctx context.Context, channel string, payload any) error
	Client() *redis.Client
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis and returns the cache
func NewRedisCache(cfg *config.Config) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		return nil, err
	}

	logger.Info("Redis initialized successfully", "addr", cfg.RedisAddr)
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, channel, data).Err()
}

func (c *redisCache) Client() *redis.Client {
	return c.client
}
