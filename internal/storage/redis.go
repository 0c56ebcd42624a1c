package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/novelplatform/novelshell/internal/config"
	"go.uber.org/zap"
)

// redisStorage implements Storage on plain Redis string keys prefixed with a namespace
type redisStorage struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

// OpenRedis connects to Redis and verifies the connection
func OpenRedis(ctx context.Context, cfg config.RedisConfig, namespace string, logger *zap.Logger) (*redisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return newRedisStorage(client, namespace, logger), nil
}

func newRedisStorage(client *redis.Client, namespace string, logger *zap.Logger) *redisStorage {
	return &redisStorage{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// redisKey scopes key to the storage namespace
func (s *redisStorage) redisKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *redisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("failed to get storage item", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to get storage item: %w", err)
	}
	return value, true, nil
}

func (s *redisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		s.logger.Error("failed to set storage item", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set storage item: %w", err)
	}
	return nil
}

func (s *redisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		s.logger.Error("failed to remove storage item", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to remove storage item: %w", err)
	}
	return nil
}

func (s *redisStorage) Close() error {
	return s.client.Close()
}
