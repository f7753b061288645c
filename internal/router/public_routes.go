package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterPublic mounts the customer-facing API under /api.  Catalog
// reads go through cache; booking creation goes through limit.
func RegisterPublic(e *echo.Echo, h Handlers, cache, limit echo.MiddlewareFunc) {
	api := e.Group("/api")

	api.GET("/services", h.Catalog.ListServices, cache)
	api.GET("/specialists", h.Catalog.ListSpecialists, cache)
	api.GET("/professionals", h.Catalog.ListSpecialists, cache)

	api.GET("/available-slots", h.Availability.FreeSlots)
	api.GET("/check-availability", h.Availability.Check)

	api.POST("/bookings", h.Bookings.Create, limit)
	api.DELETE("/bookings/:id/items/:itemId", h.Bookings.RemoveItem)
	api.DELETE("/bookings/:id", h.Bookings.Cancel)
}
