package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness together with database reachability.
type HealthHandler struct {
	DB  *sql.DB
	Env string
}

// Health answers 200 when the database responds to a ping within two
// seconds and 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "env": h.Env, "error": "database unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "env": h.Env})
}
