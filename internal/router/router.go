package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/JMirval/alelysee/internal/handler"
	"github.com/JMirval/alelysee/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Feed   *handler.FeedHandler
	Video  *handler.VideoHandler
	Health *handler.HealthHandler
	Auth   *middleware.Authenticator
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health and metrics (no auth)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	// Single-content listing is public
	api.Get("/targets/:targetType/:targetId/videos",
		middleware.NewRateLimiter(middleware.TargetLimit).Handler(), h.Video.ListByTarget)

	// Personalized routes
	auth := h.Auth.RequireAuth()
	api.Get("/feed", auth, middleware.NewRateLimiter(middleware.FeedLimit).Handler(), h.Feed.List)
	api.Post("/feed/views", auth, middleware.NewRateLimiter(middleware.ViewLimit).Handler(), h.Feed.MarkViewed)

	bookmarks := middleware.NewRateLimiter(middleware.BookmarkLimit).Handler()
	api.Post("/bookmarks", auth, bookmarks, h.Feed.ToggleBookmark)
	api.Get("/bookmarks", auth, bookmarks, h.Feed.Bookmarks)
}
