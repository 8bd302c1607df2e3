package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/duleab/ai-agent/internal/config"
)

// InitRedis initializes the optional Redis client used to cache
// conversation history. A nil client is returned when Redis is not
// configured or unreachable; callers treat nil as "cache disabled".
func InitRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.RedisEnabled() {
		return nil
	}

	// Create a context with timeout for the initial ping
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisAddr := cfg.GetRedisAddr()
	logger.Info("connecting to redis", zap.String("addr", redisAddr))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Warn("failed to connect to redis, continuing without message cache", zap.Error(err))
		return nil
	}

	logger.Info("connected to redis")
	return redisClient
}
