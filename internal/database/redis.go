package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ermradulsharma/pahadigo-sub000/internal/config"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

func ConnectRedis(cfg *config.Config) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis connected", "addr", cfg.RedisAddr)
	return nil
}

func PingRedis(ctx context.Context) error {
	if Redis == nil {
		return fmt.Errorf("redis not initialised")
	}
	return Redis.Ping(ctx).Err()
}
