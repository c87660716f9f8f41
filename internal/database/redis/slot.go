package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/profile-editor/config"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix   = "profile-editor:slot:"
	pingTimeout = 2 * time.Second
)

// Commander is the subset of the go-redis client used by the slot
type Commander interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

var _ Commander = (*goredis.Client)(nil)

// Slot stores profile slots as plain redis strings without expiry
type Slot struct {
	client Commander
}

// NewClient connects to redis and verifies the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis client initialized", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// NewSlot creates a redis-backed slot
func NewSlot(client Commander) *Slot {
	return &Slot{client: client}
}

// Name identifies the backend
func (s *Slot) Name() string {
	return "redis"
}

// Get returns the value stored under key; redis.Nil means the slot is empty
func (s *Slot) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()

	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, goredis.Nil) {
		metrics.ObserveStore("redis", "get", "not_found", duration)
		return "", false, nil
	}
	if err != nil {
		metrics.ObserveStore("redis", "get", "error", duration)
		logger.LogAPICall("redis", "get", "error", duration, zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("failed to get redis slot: %w", err)
	}

	metrics.ObserveStore("redis", "get", "success", duration)
	return value, true, nil
}

// Set overwrites the value stored under key
func (s *Slot) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	err := s.client.Set(ctx, keyPrefix+key, value, 0).Err()
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ObserveStore("redis", "set", "error", duration)
		logger.LogAPICall("redis", "set", "error", duration, zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set redis slot: %w", err)
	}

	metrics.ObserveStore("redis", "set", "success", duration)
	logger.LogAPICall("redis", "set", "success", duration, zap.String("key", key))
	return nil
}
