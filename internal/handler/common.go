// Package handler contains the HTTP endpoints.  Handlers bind and
// validate request bodies, delegate to the service layer and translate
// domain errors into HTTP statuses; they carry no business rules of
// their own.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/service"
)

// getUserID extracts the authenticated user's ID stored by the JWT
// middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
		return v, nil
	}
	return 0, errors.New("no authenticated user in context")
}

// isStaff reports whether the authenticated request carries the admin
// role.
func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// writeErr maps a domain error onto an HTTP response.  Business
// failures carry their message; anything unrecognized is a 500 with a
// generic body so internals never leak.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrShowtimeNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrRefundNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSeatUnavailable),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrScheduleConflict),
		errors.Is(err, repository.ErrInvalidState),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrIdempotencyConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidLineItem),
		errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrIdempotencyKeyRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrShowtimeExpired),
		errors.Is(err, service.ErrShowtimeStarted),
		errors.Is(err, service.ErrCancellationWindowClosed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
