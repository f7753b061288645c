// Package handler exposes the booking engine over HTTP.  Every response
// carries a "success" flag; failures add an "error" message.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/service"
)

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// writeError maps engine errors to HTTP responses.  notFound is the
// message used for service.ErrNotFound.  Unexpected errors are logged and
// answered with a generic 500.
func writeError(c echo.Context, log *zap.Logger, err error, notFound string) error {
	var verr *service.ValidationError
	var idErr *service.IdentityConflictError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": verr.Msg, "field": verr.Field})
	case errors.As(err, &idErr):
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": idErr.Error(), "existing_name": idErr.ExistingName})
	case errors.Is(err, service.ErrDuplicateBooking):
		return fail(c, http.StatusConflict, "you already have a booking at this time, please choose another slot")
	case errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrInvalidState):
		return fail(c, http.StatusBadRequest, "a cancelled booking cannot be modified")
	case errors.Is(err, service.ErrLastItemProtected):
		return fail(c, http.StatusBadRequest, "cannot remove the only service, cancel the booking instead")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "the booking changed at the same time, please try again")
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "internal server error")
}
