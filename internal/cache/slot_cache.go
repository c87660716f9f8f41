package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/getmentor/profile-editor/pkg/logger"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const cleanupInterval = 10 * time.Minute

// SlotCache is an in-process slot store. Values never expire and are
// lost when the process exits.
type SlotCache struct {
	cache *gocache.Cache
}

// NewSlotCache creates an empty in-memory slot store
func NewSlotCache() *SlotCache {
	return &SlotCache{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Name identifies the backend
func (sc *SlotCache) Name() string {
	return "memory"
}

// Get retrieves the value stored under key
func (sc *SlotCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, found := sc.cache.Get(key)
	if !found {
		logger.Debug("Slot cache miss", zap.String("key", key))
		return "", false, nil
	}

	value, ok := data.(string)
	if !ok {
		logger.Error("Invalid slot cache data type", zap.String("key", key))
		sc.cache.Delete(key)
		return "", false, fmt.Errorf("invalid cache data type for key %q", key)
	}
	return value, true, nil
}

// Set overwrites the value stored under key
func (sc *SlotCache) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sc.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

// Len returns the number of stored slots
func (sc *SlotCache) Len() int {
	return sc.cache.ItemCount()
}
