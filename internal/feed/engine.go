package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/JMirval/alelysee/internal/metrics"
	"github.com/JMirval/alelysee/internal/model"
)

// Engine builds personalized feeds: it gathers candidates from every source,
// merges them with the configured pattern, resets the user's view history once
// when nothing is left, and pages the result.
type Engine struct {
	store   Store
	sources []Source
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEngine wires the production sources over store.
func NewEngine(store Store, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("feed config: %w", err)
	}
	return &Engine{
		store:   store,
		sources: Sources(store, cfg),
		cfg:     cfg,
		logger:  logger.With().Str("component", "feed").Logger(),
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source used for the trailing window.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config returns the blend in use.
func (e *Engine) Config() Config { return e.cfg }

// ListFeed returns one page of the user's feed. An empty page is a valid
// result; errors are ErrInvalidPage, ErrStoreUnavailable or a *DecodeError.
func (e *Engine) ListFeed(ctx context.Context, user uuid.UUID, page Page) ([]model.Video, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	merged, err := e.collect(ctx, user)
	if err != nil {
		metrics.FeedRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(merged) == 0 {
		removed, err := e.store.ResetViews(ctx, user)
		if err != nil {
			metrics.FeedRequests.WithLabelValues("error").Inc()
			return nil, StoreError("reset views", err)
		}
		metrics.FeedResets.Inc()
		e.logger.Info().
			Str("user_id", user.String()).
			Int64("removed", removed).
			Msg("feed exhausted, view history reset")

		merged, err = e.collect(ctx, user)
		if err != nil {
			metrics.FeedRequests.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	metrics.FeedLength.Observe(float64(len(merged)))
	out := Paginate(merged, page.Offset, page.Limit)
	if len(out) == 0 {
		metrics.FeedRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.FeedRequests.WithLabelValues("ok").Inc()
	}

	e.logger.Debug().
		Str("user_id", user.String()).
		Int("limit", page.Limit).
		Int("offset", page.Offset).
		Int("merged", len(merged)).
		Int("returned", len(out)).
		Msg("feed served")
	return out, nil
}

// collect runs every source and merges their candidates.
func (e *Engine) collect(ctx context.Context, user uuid.UUID) ([]model.Video, error) {
	now := e.now()
	lists := make([][]model.Video, len(e.sources))

	if e.cfg.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, src := range e.sources {
			g.Go(func() error {
				videos, err := e.fetch(gctx, src, user, now)
				if err != nil {
					return err
				}
				lists[i] = videos
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, src := range e.sources {
			videos, err := e.fetch(ctx, src, user, now)
			if err != nil {
				return nil, err
			}
			lists[i] = videos
		}
	}

	return Merge(e.cfg.Pattern, lists...), nil
}

func (e *Engine) fetch(ctx context.Context, src Source, user uuid.UUID, now time.Time) ([]model.Video, error) {
	start := time.Now()
	videos, err := src.Candidates(ctx, user, now)
	metrics.SourceDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, StoreError(src.Name()+" candidates", err)
	}
	metrics.SourceCandidates.WithLabelValues(src.Name()).Observe(float64(len(videos)))
	e.logger.Debug().
		Str("source", src.Name()).
		Int("candidates", len(videos)).
		Msg("source fetched")
	return videos, nil
}
