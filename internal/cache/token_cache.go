// Package cache maps bearer tokens to account ids. Tokens are never rotated,
// so a cached mapping cannot go stale; account fields are always re-read from
// the document store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/metrics"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type TokenCache interface {
	Get(ctx context.Context, token string) (string, bool)
	Set(ctx context.Context, token, accountID string)
}

func New(cfg config.CacheConfig, redisCfg config.RedisConfig) (TokenCache, error) {
	switch cfg.Kind {
	case "", "none":
		return Noop{}, nil
	case "lru":
		return NewLRU(cfg.Size, cfg.TTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return NewRedis(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown token cache %q", cfg.Kind)
	}
}

type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool) { return "", false }
func (Noop) Set(context.Context, string, string)         {}

type LRU struct {
	cache *expirable.LRU[string, string]
}

func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = 1024
	}
	return &LRU{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (l *LRU) Get(_ context.Context, token string) (string, bool) {
	id, ok := l.cache.Get(token)
	recordLookup(ok)
	return id, ok
}

func (l *LRU) Set(_ context.Context, token, accountID string) {
	l.cache.Add(token, accountID)
}

const redisKeyPrefix = "photos:token:"

// Redis shares the mapping between server instances. Redis failures degrade
// to cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, token string) (string, bool) {
	id, err := r.client.Get(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("token_cache_get_failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		recordLookup(false)
		return "", false
	}
	recordLookup(true)
	return id, true
}

func (r *Redis) Set(ctx context.Context, token, accountID string) {
	if err := r.client.Set(ctx, redisKeyPrefix+token, accountID, r.ttl).Err(); err != nil {
		logger.Warn("token_cache_set_failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func recordLookup(hit bool) {
	if hit {
		metrics.TokenCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	metrics.TokenCacheLookups.WithLabelValues("miss").Inc()
}
