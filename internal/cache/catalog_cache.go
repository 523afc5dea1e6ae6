// Package cache keeps catalog listings in redis so report requests do not hit
// the catalog store every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"arc-backend/internal/model"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

const keyPrefix = "arc:catalog:"

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache: miss")

// Store is the subset of a key/value cache used here.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

type catalogCache struct {
	next  repository.CatalogRepository
	store Store
	ttl   time.Duration
}

// NewCatalogCache returns a CatalogRepository that serves listings from store
// for ttl before asking next again. Cache failures fall through to next.
func NewCatalogCache(next repository.CatalogRepository, store Store, ttl time.Duration) repository.CatalogRepository {
	return &catalogCache{next: next, store: store, ttl: ttl}
}

func (c *catalogCache) GetProducts(ctx context.Context, f repository.CatalogFilter) ([]model.CatalogProduct, error) {
	var out []model.CatalogProduct
	err := c.cached(ctx, productsKey(f), &out, func() (any, error) {
		return c.next.GetProducts(ctx, f)
	})
	return out, err
}

func (c *catalogCache) GetProviders(ctx context.Context) ([]model.CatalogProvider, error) {
	var out []model.CatalogProvider
	err := c.cached(ctx, keyPrefix+"providers", &out, func() (any, error) {
		return c.next.GetProviders(ctx)
	})
	return out, err
}

// Invalidate drops every cached listing.
func Invalidate(ctx context.Context, store Store) error {
	return store.DeletePrefix(ctx, keyPrefix)
}

func (c *catalogCache) cached(ctx context.Context, key string, out any, load func() (any, error)) error {
	if b, err := c.store.Get(ctx, key); err == nil {
		if err := json.Unmarshal(b, out); err == nil {
			return nil
		}
		utilities.Warn("catalog cache: dropping unreadable entry %s", key)
	} else if !errors.Is(err, ErrMiss) {
		utilities.Warn("catalog cache get %s: %v", key, err)
	}

	v, err := load()
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		utilities.Warn("catalog cache set %s: %v", key, err)
	}
	return json.Unmarshal(b, out)
}

func productsKey(f repository.CatalogFilter) string {
	return keyPrefix + "products:" + f.Kind + ":" + f.ProviderID + ":" + f.Search + ":" + strconv.FormatBool(f.IncludeInactive)
}
