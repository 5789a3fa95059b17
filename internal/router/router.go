// Package router maps HTTP routes to handlers and attaches the
// middleware chain for each group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinemagic/ticketing/internal/config"
	"github.com/cinemagic/ticketing/internal/handler"
	"github.com/cinemagic/ticketing/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Purchases *handler.PurchaseHandler
	Tickets   *handler.TicketHandler
	Refunds   *handler.RefundHandler
	Showtimes *handler.ShowtimeHandler
	Products  *handler.ProductHandler
	Rooms     *handler.RoomHandler
}

// Register wires all routes onto the Echo instance.
//
// Public browse endpoints sit behind the Redis response cache.  Every
// mutating endpoint requires a JWT; ticket redemption, refund review
// and all catalog management additionally require the admin role.  The
// checkout endpoint carries the token-bucket rate limiter.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public browsing, no authentication.
	pub := e.Group("/v1", cache)
	pub.GET("/showtimes", h.Showtimes.ListUpcoming)
	pub.GET("/showtimes/:id", h.Showtimes.Get)
	pub.GET("/showtimes/:id/seats", h.Showtimes.Seats)
	pub.GET("/products", h.Products.List)
	pub.GET("/products/:id", h.Products.Get)
	pub.GET("/rooms", h.Rooms.List)
	pub.GET("/rooms/:id", h.Rooms.Get)

	// Authenticated customer endpoints.
	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	auth.POST("/purchases", h.Purchases.Create, limit)
	auth.GET("/tickets", h.Tickets.ListMine)
	auth.GET("/tickets/:id", h.Tickets.Get)
	auth.POST("/tickets/:id/cancel", h.Tickets.Cancel)

	// Staff endpoints.
	staff := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))
	staff.POST("/tickets/:id/use", h.Tickets.Use)
	staff.GET("/refunds/pending", h.Refunds.ListPending)
	staff.POST("/refunds/:id/approve", h.Refunds.Approve)
	staff.POST("/refunds/:id/reject", h.Refunds.Reject)
	staff.POST("/showtimes", h.Showtimes.Create)
	staff.PUT("/showtimes/:id", h.Showtimes.Update)
	staff.DELETE("/showtimes/:id", h.Showtimes.Delete)
	staff.POST("/products", h.Products.Create)
	staff.PUT("/products/:id", h.Products.Update)
	staff.DELETE("/products/:id", h.Products.Delete)
	staff.POST("/products/:id/stock", h.Products.AdjustStock)
	staff.POST("/rooms", h.Rooms.Create)
	staff.PUT("/rooms/:id", h.Rooms.Update)
	staff.DELETE("/rooms/:id", h.Rooms.Delete)
}
