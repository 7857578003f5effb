package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/config"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/handler"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/middleware"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Rooms     *handler.RoomHandler
	Bookings  *handler.BookingHandler
	Payments  *handler.PaymentHandler
	Reception *handler.ReceptionHandler
}

// Register wires the full HTTP surface.  Public catalog routes sit behind
// the response cache; booking and payment routes behind the rate limiter.
// The webhook and return endpoints are unauthenticated because the gateway
// calls them without our tokens; both re-verify against the gateway before
// touching state.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public catalog: guests browse rooms before authenticating.
	e.GET("/v1/rooms", h.Rooms.List, cache)
	e.GET("/v1/rooms/:id/availability", h.Rooms.Availability, cache)

	// Gateway-facing endpoints.
	e.GET("/v1/payments/return", h.Payments.Return, limit)
	e.POST("/v1/payments/webhook", h.Payments.Webhook)

	// Guest booking lifecycle.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/bookings", h.Bookings.Create, limit)
	auth.GET("/my-bookings", h.Bookings.MyBookings)
	auth.GET("/bookings/:id", h.Bookings.Get)
	auth.POST("/bookings/:id/pay", h.Bookings.PayAgain, limit)
	auth.DELETE("/bookings/:id", h.Bookings.Cancel)

	// Reception board and check-out.
	staff := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleReceptionist, middleware.RoleAdmin))
	staff.GET("/bookings", h.Reception.ListAll)
	staff.POST("/bookings/:id/complete", h.Reception.Complete)

	// Staff overrides on any booking or room.
	admin := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleReceptionist, middleware.RoleAdmin))
	admin.DELETE("/bookings/:id", h.Reception.AdminCancel)
	admin.PATCH("/rooms/:id", h.Reception.UpdateRoom)
}
