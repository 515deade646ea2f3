package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/middleware"
)

// writeError maps service errors onto the API error envelope. action names
// the failed operation in 5xx messages.
func writeError(c fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	var decodeErr *feed.DecodeError
	switch {
	case errors.Is(err, feed.ErrInvalidIdentifier), errors.Is(err, feed.ErrInvalidPage):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	case errors.Is(err, feed.ErrUnknownVideo):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
	case errors.As(err, &decodeErr):
		logger.Error().Err(err).Str("field", decodeErr.Field).Msg(action + ": undecodable row")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "DATA_ERROR", "Failed to "+action)
	case errors.Is(err, feed.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		logger.Error().Err(err).Msg(action + ": store unavailable")
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Failed to "+action)
	default:
		logger.Error().Err(err).Msg(action + " failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

func unauthorized(c fiber.Ctx) error {
	return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
}
