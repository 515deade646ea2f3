package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/repository"
)

// TargetInvalidator drops cached pages for a "type:id" target key.
type TargetInvalidator interface {
	InvalidateTarget(ctx context.Context, key string) error
}

// CacheWorker listens for PostgreSQL NOTIFY on video_target_changes and
// batches cache invalidations. If 50 votes hit videos of the same proposal in
// one window, its cached pages are dropped once.
type CacheWorker struct {
	pool   *pgxpool.Pool
	cache  TargetInvalidator
	batch  time.Duration
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{} // target keys waiting for invalidation
}

// NewCacheWorker creates a cache invalidation worker.
func NewCacheWorker(pool *pgxpool.Pool, cache TargetInvalidator, logger zerolog.Logger) *CacheWorker {
	return &CacheWorker{
		pool:    pool,
		cache:   cache,
		batch:   5 * time.Second,
		logger:  logger.With().Str("component", "cache-worker").Logger(),
		pending: make(map[string]struct{}),
	}
}

// Start listens for notifications until ctx is cancelled, reconnecting on errors.
func (w *CacheWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("batch_window", w.batch).Msg("starting")

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
			w.logger.Warn().Err(err).Msg("listen error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on the target channel,
// and collects payloads for the flush loop.
func (w *CacheWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+repository.TargetChannel); err != nil {
		return err
	}
	w.logger.Info().Str("channel", repository.TargetChannel).Msg("listening")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		w.Enqueue(notification.Payload)
	}
}

// Enqueue schedules a target key for invalidation at the next flush.
func (w *CacheWorker) Enqueue(key string) {
	if key == "" {
		return
	}
	w.mu.Lock()
	w.pending[key] = struct{}{}
	w.mu.Unlock()
}

func (w *CacheWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batch)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.Flush(context.Background())
			return
		}
	}
}

// Flush drains the pending set and invalidates each target once. It returns
// how many targets were invalidated.
func (w *CacheWorker) Flush(ctx context.Context) int {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return 0
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	invalidated := 0
	for key := range batch {
		if err := w.cache.InvalidateTarget(ctx, key); err != nil {
			w.logger.Warn().Err(err).Str("target", key).Msg("cache invalidate error")
			continue
		}
		invalidated++
	}

	if invalidated > 0 {
		w.logger.Debug().Int("invalidated", invalidated).Msg("batch complete")
	}
	return invalidated
}
