package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/metrics"
	"github.com/JMirval/alelysee/internal/model"
)

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Name string

	// MaxRequests is the number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic reset period for counts in closed state.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying half-open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "store",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker decorates a Repository with a circuit breaker. While open, every
// call fails fast with feed.ErrStoreUnavailable.
type Breaker struct {
	next Repository
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker wraps next. Data errors (decode failures, unknown videos, invalid
// votes) and caller cancellation do not count against the store.
func NewBreaker(next Repository, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	log := logger.With().Str("component", "breaker").Str("name", cfg.Name).Logger()
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("store circuit breaker state change")
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func isSuccessful(err error) bool {
	return err == nil ||
		feed.IsDecodeError(err) ||
		errors.Is(err, feed.ErrUnknownVideo) ||
		errors.Is(err, feed.ErrInvalidVote) ||
		errors.Is(err, context.Canceled)
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: %w", feed.ErrStoreUnavailable, err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) CollaborativeVideos(ctx context.Context, user uuid.UUID, limit int) ([]model.Video, error) {
	return call(b, func() ([]model.Video, error) { return b.next.CollaborativeVideos(ctx, user, limit) })
}

func (b *Breaker) PopularVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return call(b, func() ([]model.Video, error) { return b.next.PopularVideos(ctx, user, since, limit) })
}

func (b *Breaker) InteractiveVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return call(b, func() ([]model.Video, error) { return b.next.InteractiveVideos(ctx, user, since, limit) })
}

func (b *Breaker) ResetViews(ctx context.Context, user uuid.UUID) (int64, error) {
	return call(b, func() (int64, error) { return b.next.ResetViews(ctx, user) })
}

func (b *Breaker) VideosByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error) {
	return call(b, func() ([]model.Video, error) {
		return b.next.VideosByTarget(ctx, targetType, targetID, limit, offset)
	})
}

func (b *Breaker) BookmarkedVideos(ctx context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error) {
	return call(b, func() ([]model.Video, error) { return b.next.BookmarkedVideos(ctx, user, limit, offset) })
}

func (b *Breaker) MarkViewed(ctx context.Context, user, video uuid.UUID) error {
	_, err := call(b, func() (struct{}, error) { return struct{}{}, b.next.MarkViewed(ctx, user, video) })
	return err
}

func (b *Breaker) ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error) {
	return call(b, func() (bool, error) { return b.next.ToggleBookmark(ctx, user, video) })
}

func (b *Breaker) CreateVideo(ctx context.Context, v *model.Video) error {
	_, err := call(b, func() (struct{}, error) { return struct{}{}, b.next.CreateVideo(ctx, v) })
	return err
}

func (b *Breaker) SetVote(ctx context.Context, v model.Vote) error {
	_, err := call(b, func() (struct{}, error) { return struct{}{}, b.next.SetVote(ctx, v) })
	return err
}

func (b *Breaker) AddComment(ctx context.Context, c *model.Comment) error {
	_, err := call(b, func() (struct{}, error) { return struct{}{}, b.next.AddComment(ctx, c) })
	return err
}

func (b *Breaker) CountVideos(ctx context.Context) (int64, error) {
	return call(b, func() (int64, error) { return b.next.CountVideos(ctx) })
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}
