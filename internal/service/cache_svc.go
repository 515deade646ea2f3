package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/metrics"
	"github.com/JMirval/alelysee/internal/model"
	"github.com/JMirval/alelysee/internal/repository"
)

// TargetCacheTTL bounds how stale a cached single-content page can get when
// no invalidation arrives.
const TargetCacheTTL = time.Minute

// CacheService provides a Redis cache-aside layer for single-content video pages.
// Each target gets one hash; fields are "limit:offset". Pages are dropped by
// CacheWorker when Postgres announces a target change; without that worker a
// cached voteScore may lag the live sum by up to TargetCacheTTL.
type CacheService struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string, logger zerolog.Logger) *CacheService {
	log := logger.With().Str("component", "cache").Logger()
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{logger: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{logger: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		rdb.Close()
		return &CacheService{logger: log}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, logger: log}
}

// NewCacheServiceWithClient wraps an existing client. rdb may be nil.
func NewCacheServiceWithClient(rdb *redis.Client, logger zerolog.Logger) *CacheService {
	return &CacheService{rdb: rdb, logger: logger.With().Str("component", "cache").Logger()}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// Enabled reports whether a Redis client is configured.
func (c *CacheService) Enabled() bool {
	return c.rdb != nil
}

// GetTargetPage returns a cached page, or ok=false on miss or when caching is disabled.
func (c *CacheService) GetTargetPage(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, bool, error) {
	if c.rdb == nil {
		return nil, false, nil
	}
	data, err := c.rdb.HGet(ctx, targetKey(targetType, targetID), pageField(limit, offset)).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var videos []model.Video
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, false, err
	}
	metrics.CacheHits.Inc()
	return videos, true, nil
}

// SetTargetPage stores a page. The TTL applies to the whole target hash.
func (c *CacheService) SetTargetPage(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int, videos []model.Video) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(videos)
	if err != nil {
		return err
	}
	key := targetKey(targetType, targetID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, pageField(limit, offset), b)
	pipe.Expire(ctx, key, TargetCacheTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateTarget drops every cached page of a target. key is "type:id".
func (c *CacheService) InvalidateTarget(ctx context.Context, key string) error {
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, cacheKey(key)).Err(); err != nil {
		return err
	}
	metrics.CacheInvalidations.Inc()
	return nil
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func targetKey(targetType model.TargetType, targetID uuid.UUID) string {
	return cacheKey(repository.TargetKey(targetType, targetID))
}

func cacheKey(target string) string {
	return fmt.Sprintf("videos:target:%s", target)
}

func pageField(limit, offset int) string {
	return strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}
