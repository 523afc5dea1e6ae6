package main

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"arc-backend/internal/cache"
	"arc-backend/internal/config"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

// buildCatalog picks the catalog source: Supabase REST when its URL and key
// are set, otherwise the postgres tables. Either is cached in redis when
// REDIS_ADDR is set. The returned func releases the redis client.
func buildCatalog(ctx context.Context, cfg *config.APIConfig, gdb *gorm.DB) (repository.CatalogRepository, func()) {
	var repo repository.CatalogRepository
	switch {
	case cfg.Env.SupabaseURL != "" && cfg.Env.SupabaseAnonKey != "":
		utilities.Info("catalog source: supabase %s", cfg.Env.SupabaseURL)
		repo = repository.NewSupabaseCatalogRepository(cfg.Env.SupabaseURL, cfg.Env.SupabaseAnonKey,
			&http.Client{Timeout: 10 * time.Second})
	case gdb != nil:
		utilities.Info("catalog source: postgres")
		repo = repository.NewCatalogRepository(gdb)
	default:
		utilities.Warn("catalog source: built-in defaults")
		providers, products := repository.DefaultCatalog()
		repo = repository.NewStaticCatalogRepository(providers, products)
	}

	if cfg.Env.RedisAddr == "" {
		return repo, func() {}
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.Env.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		utilities.Warn("catalog cache disabled: %v", err)
		return repo, func() {}
	}
	ttl := time.Duration(cfg.Cache.CatalogTTLSeconds) * time.Second
	utilities.Info("catalog cache: redis %s ttl %s", cfg.Env.RedisAddr, ttl)
	return cache.NewCatalogCache(repo, cache.NewRedisStore(rdb), ttl), func() { rdb.Close() }
}
