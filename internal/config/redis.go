package config

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis اتصال به Redis را راه‌اندازی می‌کند
func InitRedis(ctx context.Context, cfg *Config, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// بررسی اتصال به Redis
	s, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info("Connected to Redis", zap.String("ping", s))
	return client, nil
}
