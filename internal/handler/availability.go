package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/service"
)

// AvailabilityHandler serves the read-only slot queries.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
	Log          *zap.Logger
}

func NewAvailabilityHandler(a *service.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: a, Log: log}
}

// optionalID parses an optional numeric query parameter.  An empty value
// yields nil.
func optionalID(c echo.Context, name string) (*uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// FreeSlots handles GET /api/available-slots?date=&professionalId=.
func (h *AvailabilityHandler) FreeSlots(c echo.Context) error {
	specialist, ok := optionalID(c, "professionalId")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid professionalId")
	}
	res, err := h.Availability.FreeSlots(c.Request().Context(), c.QueryParam("date"), specialist)
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"date":           res.Date,
		"totalSlots":     res.TotalSlots,
		"availableCount": res.AvailableCount,
		"bookedCount":    res.BookedCount,
		"slots":          res.Slots,
	})
}

// Check handles GET /api/check-availability?date=&time=&professionalId=&contact=.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	specialist, ok := optionalID(c, "professionalId")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid professionalId")
	}
	res, err := h.Availability.Check(c.Request().Context(), service.CheckInput{
		Date:         c.QueryParam("date"),
		Time:         c.QueryParam("time"),
		SpecialistID: specialist,
		Contact:      c.QueryParam("contact"),
	})
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":               true,
		"available":             res.Available,
		"professionalAvailable": res.ProfessionalAvailable,
		"customerAvailable":     res.CustomerAvailable,
		"message":               res.Message,
	})
}
