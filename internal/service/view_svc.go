package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/metrics"
	"github.com/JMirval/alelysee/internal/model"
)

// ViewStore records per-user view and bookmark facts.
type ViewStore interface {
	MarkViewed(ctx context.Context, user, video uuid.UUID) error
	ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error)
	BookmarkedVideos(ctx context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error)
}

// ViewService handles the write side the feed filters against, plus the
// bookmarks listing.
type ViewService struct {
	repo   ViewStore
	logger zerolog.Logger
}

func NewViewService(repo ViewStore, logger zerolog.Logger) *ViewService {
	return &ViewService{repo: repo, logger: logger.With().Str("component", "view-service").Logger()}
}

// MarkViewed records that user has seen video. Repeating it is a no-op.
func (s *ViewService) MarkViewed(ctx context.Context, user, video uuid.UUID) error {
	if err := s.repo.MarkViewed(ctx, user, video); err != nil {
		return feed.StoreError("mark viewed", err)
	}
	metrics.ViewsRecorded.Inc()
	return nil
}

// ToggleBookmark flips the bookmark and returns the new state.
func (s *ViewService) ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error) {
	bookmarked, err := s.repo.ToggleBookmark(ctx, user, video)
	if err != nil {
		return false, feed.StoreError("toggle bookmark", err)
	}
	metrics.BookmarkToggles.WithLabelValues(strconv.FormatBool(bookmarked)).Inc()
	s.logger.Debug().
		Str("user_id", user.String()).
		Str("video_id", video.String()).
		Bool("bookmarked", bookmarked).
		Msg("bookmark toggled")
	return bookmarked, nil
}

// Bookmarks lists the user's bookmarked videos, most recently bookmarked first.
func (s *ViewService) Bookmarks(ctx context.Context, user uuid.UUID, page feed.Page) ([]model.Video, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	videos, err := s.repo.BookmarkedVideos(ctx, user, page.Limit, page.Offset)
	if err != nil {
		return nil, feed.StoreError("bookmarked videos", err)
	}
	return videos, nil
}
