package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

// uuidLen is the length of a canonical hyphenated UUID.
const uuidLen = 36

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateID checks that an identifier is a canonical UUID. field names the
// parameter in the error message.
func ValidateID(field, raw string) (uuid.UUID, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, field + " is required"
	}
	if len(raw) != uuidLen {
		return uuid.Nil, field + " must be a UUID"
	}
	id, err := feed.ParseID(field, raw)
	if err != nil {
		return uuid.Nil, field + " must be a UUID"
	}
	return id, ""
}

// ValidateTargetType checks the content kind a video listing is attached to.
func ValidateTargetType(raw string) (model.TargetType, string) {
	t, ok := model.ParseTargetType(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return "", "targetType must be one of proposal, program, video, comment"
	}
	return t, ""
}

// ValidatePage reads limit and offset from the query string. limit defaults
// to feed.DefaultPageLimit and may not exceed feed.MaxPageLimit.
func ValidatePage(c fiber.Ctx) (feed.Page, string) {
	page := feed.Page{Limit: feed.DefaultPageLimit}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return feed.Page{}, "limit must be a non-negative integer"
		}
		if n > feed.MaxPageLimit {
			return feed.Page{}, "limit must be at most " + strconv.Itoa(feed.MaxPageLimit)
		}
		page.Limit = n
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return feed.Page{}, "offset must be a non-negative integer"
		}
		page.Offset = n
	}

	return page, ""
}
