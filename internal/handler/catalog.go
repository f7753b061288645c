package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/service"
)

// CatalogHandler serves the service and specialist lists.
type CatalogHandler struct {
	Catalog *service.CatalogService
	Log     *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Log: log}
}

// ListServices handles GET /api/services.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	out, err := h.Catalog.ListServices(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(out), "data": out})
}

// ListSpecialists handles GET /api/specialists and /api/professionals.
func (h *CatalogHandler) ListSpecialists(c echo.Context) error {
	out, err := h.Catalog.ListSpecialists(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(out), "data": out})
}
