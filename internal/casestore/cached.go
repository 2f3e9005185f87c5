package casestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/domain"
)

const cacheKeyPrefix = "rif:case:"

// CachedStore keeps stored cases in Redis for Get. Redis failures are
// logged and the call falls through to the wrapped store. ImportJSON never
// replaces stored cases, so it passes through without touching the cache.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedStore connects to Redis and wraps store.
func NewCachedStore(ctx context.Context, store Store, cfg domain.CacheConfig, logger *logrus.Logger) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newCachedStore(store, client, cfg.TTL, logger), nil
}

func newCachedStore(store Store, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{Store: store, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

func (c *CachedStore) put(ctx context.Context, rec *CaseRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		c.logger.WithError(err).WithField("case_id", rec.ID).Warn("Failed to encode case for cache")
		return
	}
	if err := c.client.Set(ctx, cacheKey(rec.ID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("case_id", rec.ID).Warn("Failed to cache case")
	}
}

func (c *CachedStore) evict(ctx context.Context, id string) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.WithError(err).WithField("case_id", id).Warn("Failed to evict cached case")
	}
}

func (c *CachedStore) Save(ctx context.Context, rec *CaseRecord) error {
	if err := c.Store.Save(ctx, rec); err != nil {
		return err
	}
	c.put(ctx, rec)
	return nil
}

func (c *CachedStore) Get(ctx context.Context, id string) (*CaseRecord, error) {
	val, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var rec CaseRecord
		if err := json.Unmarshal(val, &rec); err == nil {
			return &rec, nil
		}
		c.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		c.logger.WithError(err).WithField("case_id", id).Warn("Case cache unavailable")
	}

	rec, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, rec)
	return rec, nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	if err := c.Store.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *CachedStore) Close() error {
	cerr := c.client.Close()
	if err := c.Store.Close(); err != nil {
		return err
	}
	return cerr
}
