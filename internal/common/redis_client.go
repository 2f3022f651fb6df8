package common

import (
	"context"
	"time"

	"infinite-experiment/flightboard/internal/config"
	"infinite-experiment/flightboard/internal/logging"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	logging.Info("[Redis] Initializing Redis client", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// the pool keeps retrying; the health check reports it
		logging.Error("[Redis] Failed to ping Redis", "error", err)
		return client
	}

	logging.Info("[Redis] Successfully connected to Redis")
	return client
}

// NewCache picks the board cache backend from config.
func NewCache(cfg *config.Config) CacheInterface {
	if cfg.CacheBackend == config.CacheRedis {
		return NewRedisCacheService(NewRedisClient(cfg))
	}
	return NewCacheService(cfg.BoardCacheTTL, 2*cfg.BoardCacheTTL)
}
