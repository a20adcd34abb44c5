package infrastructure

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis for the leaderboard cache. The cache is
// best-effort: a failed ping is logged and reported, and callers may choose
// to run without it.
func NewRedisClient(config *RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis connection established",
		zap.String("addr", config.Addr),
		zap.Int("db", config.DB),
	)

	return client, nil
}
