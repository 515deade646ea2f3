package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

// TargetLister lists videos attached to one piece of content.
type TargetLister interface {
	VideosByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error)
}

// VideoService serves the non-personalized single-content listing.
type VideoService struct {
	repo   TargetLister
	cache  *CacheService
	logger zerolog.Logger
}

func NewVideoService(repo TargetLister, cache *CacheService, logger zerolog.Logger) *VideoService {
	return &VideoService{
		repo:   repo,
		cache:  cache,
		logger: logger.With().Str("component", "video-service").Logger(),
	}
}

// ListByTarget returns one page of videos attached to a target, newest first.
// Cache failures are logged and fall through to the store.
func (s *VideoService) ListByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, page feed.Page) ([]model.Video, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		videos, ok, err := s.cache.GetTargetPage(ctx, targetType, targetID, page.Limit, page.Offset)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache: get target page error")
		} else if ok {
			return videos, nil
		}
	}

	videos, err := s.repo.VideosByTarget(ctx, targetType, targetID, page.Limit, page.Offset)
	if err != nil {
		return nil, feed.StoreError("videos by target", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTargetPage(ctx, targetType, targetID, page.Limit, page.Offset, videos); err != nil {
			s.logger.Warn().Err(err).Msg("cache: set target page error")
		}
	}
	return videos, nil
}
