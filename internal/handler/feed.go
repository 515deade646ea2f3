package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/middleware"
	"github.com/JMirval/alelysee/internal/model"
	"github.com/JMirval/alelysee/internal/service"
)

// FeedLister builds a user's personalized feed.
type FeedLister interface {
	ListFeed(ctx context.Context, user uuid.UUID, page feed.Page) ([]model.Video, error)
}

type FeedHandler struct {
	feed   FeedLister
	views  *service.ViewService
	logger zerolog.Logger
}

func NewFeedHandler(f FeedLister, views *service.ViewService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   f,
		views:  views,
		logger: logger.With().Str("component", "feed-handler").Logger(),
	}
}

// List handles GET /api/feed?limit=&offset=
func (h *FeedHandler) List(c fiber.Ctx) error {
	user, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	page, errMsg := middleware.ValidatePage(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	videos, err := h.feed.ListFeed(c.Context(), user, page)
	if err != nil {
		return writeError(c, h.logger, err, "load feed")
	}
	return c.JSON(model.FeedResponse{Videos: videos, Limit: page.Limit, Offset: page.Offset})
}

// MarkViewed handles POST /api/feed/views {videoId}
func (h *FeedHandler) MarkViewed(c fiber.Ctx) error {
	user, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	video, errMsg := bindVideoID(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.views.MarkViewed(c.Context(), user, video); err != nil {
		return writeError(c, h.logger, err, "record view")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleBookmark handles POST /api/bookmarks {videoId}
func (h *FeedHandler) ToggleBookmark(c fiber.Ctx) error {
	user, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	video, errMsg := bindVideoID(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	bookmarked, err := h.views.ToggleBookmark(c.Context(), user, video)
	if err != nil {
		return writeError(c, h.logger, err, "toggle bookmark")
	}
	return c.JSON(model.BookmarkResponse{VideoID: video, Bookmarked: bookmarked})
}

// Bookmarks handles GET /api/bookmarks?limit=&offset=
func (h *FeedHandler) Bookmarks(c fiber.Ctx) error {
	user, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	page, errMsg := middleware.ValidatePage(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	videos, err := h.views.Bookmarks(c.Context(), user, page)
	if err != nil {
		return writeError(c, h.logger, err, "load bookmarks")
	}
	return c.JSON(model.FeedResponse{Videos: videos, Limit: page.Limit, Offset: page.Offset})
}

func bindVideoID(c fiber.Ctx) (uuid.UUID, string) {
	var req model.VideoActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return uuid.Nil, "Invalid request body"
	}
	return middleware.ValidateID("videoId", req.VideoID)
}
