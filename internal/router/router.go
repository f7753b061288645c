package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Catalog      *handler.CatalogHandler
	Availability *handler.AvailabilityHandler
	Bookings     *handler.BookingHandler
	Auth         *handler.AuthHandler
}

// RegisterRoutes mounts the operational endpoints: health checks and the
// Prometheus scrape handler.  metrics may be nil.
func RegisterRoutes(e *echo.Echo, h Handlers, metrics http.Handler) {
	e.GET("/healthz", h.Health.Health)
	e.GET("/health", h.Health.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}
