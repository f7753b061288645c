package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// BookingHandler exposes the booking ledger.
type BookingHandler struct {
	Bookings *service.BookingService
	Log      *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Log: log}
}

type contactView struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

type specialistView struct {
	ID   *uint64 `json:"id"`
	Name string  `json:"name"`
}

// BookingView is the JSON shape of a booking.
type BookingView struct {
	ID           uint64              `json:"id"`
	CustomerName string              `json:"customer_name"`
	Contact      contactView         `json:"contact"`
	DateISO      string              `json:"date_iso"`
	DateDisplay  string              `json:"date_display"`
	Time         string              `json:"time"`
	Professional specialistView      `json:"professional"`
	Items        []model.BookingItem `json:"items"`
	Total        int                 `json:"total"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

func toView(b model.Booking) BookingView {
	items := b.Items
	if items == nil {
		items = []model.BookingItem{}
	}
	return BookingView{
		ID:           b.ID,
		CustomerName: b.CustomerName,
		Contact:      contactView{Method: b.ContactMethod, Value: b.ContactValue},
		DateISO:      b.DateISO,
		DateDisplay:  b.DateDisplay,
		Time:         b.Time,
		Professional: specialistView{ID: b.SpecialistID, Name: b.SpecialistName},
		Items:        items,
		Total:        b.Total,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var in service.CreateBookingInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	id, err := h.Bookings.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id, "message": "booking confirmed"})
}

// List handles GET /api/bookings?limit=.  Only confirmed bookings are
// returned, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	list, err := h.Bookings.List(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, h.Log, err, "")
	}
	data := make([]BookingView, 0, len(list))
	for _, b := range list {
		data = append(data, toView(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(data), "data": data})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err, "booking not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": toView(*b)})
}

// RemoveItem handles DELETE /api/bookings/:id/items/:itemId.
func (h *BookingHandler) RemoveItem(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "booking id and item id are required")
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return fail(c, http.StatusBadRequest, "booking id and item id are required")
	}
	total, err := h.Bookings.RemoveItem(c.Request().Context(), id, itemID)
	if err != nil {
		return writeError(c, h.Log, err, "booking or service not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "service removed", "newTotal": total})
}

// Cancel handles DELETE /api/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "booking id is required")
	}
	if err := h.Bookings.Cancel(c.Request().Context(), id); err != nil {
		return writeError(c, h.Log, err, "booking not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "booking cancelled"})
}
