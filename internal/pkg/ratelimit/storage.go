package ratelimit

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/storage/redis"

	"github.com/donote/donote/internal/pkg/cache"
	"github.com/donote/donote/internal/pkg/env"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// NewRedisStorage connects a gofiber redis storage to the cache server on its
// own database (RATE_LIMIT_REDIS_DB, default 2).
func NewRedisStorage() fiber.Storage {
	host, portStr, _ := strings.Cut(cache.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: env.GetEnvInt("RATE_LIMIT_REDIS_DB", 2),
		Reset:    false,
	})
}

// StorageFromEnv returns the limiter storage named by RATE_LIMIT_STORE. A nil
// storage keeps counters in process memory.
//
// The limiter reads and writes a window without a cross-process lock, so
// instances sharing redis may each admit the last request of a window.
func StorageFromEnv() fiber.Storage {
	switch strings.ToLower(env.GetEnv("RATE_LIMIT_STORE", StoreMemory)) {
	case StoreRedis:
		log.Info("[RateLimit] Using redis storage")
		return NewRedisStorage()
	default:
		log.Info("[RateLimit] Using in-memory storage")
		return nil
	}
}
