package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/steve2482/simspeedserver/internal/handler"
	"github.com/steve2482/simspeedserver/internal/metrics"
	"github.com/steve2482/simspeedserver/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Broadcast *handler.BroadcastHandler
	Channel   *handler.ChannelHandler
	User      *handler.UserHandler
	Favorite  *handler.FavoriteHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all routes on the given Fiber app.
// secureCookie marks refreshed session cookies Secure.
func Setup(app *fiber.App, h *Handlers, sessions middleware.SessionResolver, corsOrigins string, secureCookie bool) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(metrics.Middleware())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	broadcastLimit := middleware.NewBroadcastRateLimiter().Handler()
	authLimit := middleware.NewAuthRateLimiter().Handler()
	favoriteLimit := middleware.NewFavoriteRateLimiter().Handler()
	requireSession := middleware.RequireSession(sessions, secureCookie)

	// Broadcasts
	app.Get("/live", broadcastLimit, h.Broadcast.Live)
	app.Get("/upcoming", broadcastLimit, h.Broadcast.Upcoming)
	app.Post("/channel-upcoming", broadcastLimit, h.Broadcast.ChannelUpcoming)
	app.Post("/channel-videos", broadcastLimit, h.Broadcast.ChannelVideos)

	// Directory
	app.Get("/channel-names", h.Channel.Names)

	// Accounts
	app.Post("/register", authLimit, h.User.Register)
	app.Post("/login", authLimit, h.User.Login)
	app.Get("/logout", h.User.Logout)
	app.Get("/user", requireSession, h.User.Me)

	// Favorites
	app.Post("/favorite-channel", requireSession, favoriteLimit, h.Favorite.Add)
	app.Post("/remove-channel", requireSession, favoriteLimit, h.Favorite.Remove)
}
