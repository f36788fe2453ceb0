package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	catalogCacheKey      = "coursehub:catalog:courses"
	catalogGenerationKey = "coursehub:catalog:generation"
)

// CatalogCache holds the serialized public course list.
//
// Entries are keyed by generation. Get reports the current generation even on
// a miss, and Set stores the payload under the generation the caller read, so
// a list built before an Invalidate is never served after it.
type CatalogCache interface {
	Get(ctx context.Context) (payload []byte, generation int64, ok bool)
	Set(ctx context.Context, generation int64, payload []byte)
	Invalidate(ctx context.Context)
}

type redisCatalogCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCatalogCache(addr string, ttl time.Duration, logger *zap.Logger) (CatalogCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}

	return &redisCatalogCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(zap.String("service", "RedisCatalogCache")),
	}, nil
}

func catalogKey(generation int64) string {
	return fmt.Sprintf("%s:%d", catalogCacheKey, generation)
}

func (c *redisCatalogCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, catalogGenerationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisCatalogCache) Get(ctx context.Context) ([]byte, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("catalog cache generation failed", zap.Error(err))
		return nil, -1, false
	}

	payload, err := c.rdb.Get(ctx, catalogKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("catalog cache get failed", zap.Error(err))
		}
		return nil, gen, false
	}
	return payload, gen, true
}

func (c *redisCatalogCache) Set(ctx context.Context, generation int64, payload []byte) {
	if generation < 0 {
		return
	}
	if err := c.rdb.Set(ctx, catalogKey(generation), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache set failed", zap.Error(err))
	}
}

// Invalidate moves readers to a fresh generation; old entries expire by TTL.
func (c *redisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, catalogGenerationKey).Err(); err != nil {
		c.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

type noopCatalogCache struct{}

func NewNoopCatalogCache() CatalogCache { return noopCatalogCache{} }

func (noopCatalogCache) Get(context.Context) ([]byte, int64, bool) { return nil, -1, false }
func (noopCatalogCache) Set(context.Context, int64, []byte)        {}
func (noopCatalogCache) Invalidate(context.Context)                {}
