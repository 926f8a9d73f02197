// Package bootstrap connects the runtime dependencies selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/redisclient"
	"devconnector/internal/repository"

	"github.com/redis/go-redis/v9"
)

// InitRuntime opens the configured store and Redis. The Redis client is nil
// when REDIS_URL is unset or unreachable; the API runs without activity events then.
func InitRuntime(ctx context.Context, cfg *config.Config) (*repository.Store, *redis.Client, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RedisURL != "" {
		redisclient.InitRedis(cfg.RedisURL)
	}
	return store, redisclient.GetClient(), nil
}

// OpenStore connects the document or relational store named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		return repository.NewMongoStore(client, db), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return repository.NewGormStore(db), nil
}
