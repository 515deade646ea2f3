package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/middleware"
	"github.com/JMirval/alelysee/internal/model"
	"github.com/JMirval/alelysee/internal/service"
)

type VideoHandler struct {
	svc    *service.VideoService
	logger zerolog.Logger
}

func NewVideoHandler(svc *service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{svc: svc, logger: logger.With().Str("component", "video-handler").Logger()}
}

// ListByTarget handles GET /api/targets/:targetType/:targetId/videos?limit=&offset=
func (h *VideoHandler) ListByTarget(c fiber.Ctx) error {
	targetType, errMsg := middleware.ValidateTargetType(c.Params("targetType"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	targetID, errMsg := middleware.ValidateID("targetId", c.Params("targetId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	page, errMsg := middleware.ValidatePage(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	videos, err := h.svc.ListByTarget(c.Context(), targetType, targetID, page)
	if err != nil {
		return writeError(c, h.logger, err, "load videos")
	}
	return c.JSON(model.FeedResponse{Videos: videos, Limit: page.Limit, Offset: page.Offset})
}
