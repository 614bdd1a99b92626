package cache

import (
	"context"
	"fmt"

	"flavorlab-enrichment/internal/infrastructure/config"
)

// Store 批次結果快取介面
type Store interface {
	// Get 取得快取值，未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(cfg *config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return NewRedisStore(cfg)
	case config.CacheBackendMemory, "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
