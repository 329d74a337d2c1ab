package store

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/zhouzirui/mock-interview/backend/internal/config"
)

// Open builds the configured backend. Persistent backends are wrapped so that
// outages degrade to in-memory storage instead of failing requests.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var primary Store

	switch cfg.Backend {
	case "", config.StoreMemory:
		return NewMemory(), nil
	case config.StoreSQLite:
		sqlite, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		primary = sqlite
	case config.StoreRedis:
		rdb, err := NewRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		primary = rdb
	case config.StoreSupabase:
		primary = NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTable)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Backend)
	}

	log.Printf("[store] using %s session store with in-memory fallback", primary.Name())
	return Fallback(primary, NewMemory()), nil
}
