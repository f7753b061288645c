package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/utils"
)

// RegisterStaff mounts staff login and the endpoints that expose customer
// contact data.  Everything except login requires a STAFF token.
func RegisterStaff(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	e.POST("/api/auth/login", h.Auth.Login, limit)

	// Per-route middleware: a group would also guard unmatched /api paths.
	staff := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleStaff),
	}
	e.GET("/api/bookings", h.Bookings.List, staff...)
	e.GET("/api/bookings/:id", h.Bookings.Get, staff...)
}
