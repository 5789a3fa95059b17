// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios without
// inspecting SQL errors.  Every business-rule violation maps onto one of
// these kinds; ErrStorageUnavailable is the only kind a caller may retry.
package repository

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent records, such as deleting a showtime that already
// has tickets sold.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrScheduleConflict is returned when a showtime would start within
// the minimum separation of another showtime in the same room.
var ErrScheduleConflict = errors.New("schedule conflict")

// ErrSeatUnavailable is returned by the seat ledger when a claim does
// not transition a seat: the seat either does not exist or is already
// occupied.  Under concurrent claims for one seat exactly one caller
// succeeds and the rest observe this error.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrInsufficientStock is returned by the stock ledger when a product
// exists but its remaining stock is lower than the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidState is returned when a state transition is not legal from
// the row's current state, e.g. cancelling a used ticket.
var ErrInvalidState = errors.New("invalid state")

// Not-found sentinels, one per entity the API references directly.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrRefundNotFound   = errors.New("refund not found")
)

// ErrStorageUnavailable wraps transient infrastructure failures (lost
// connections, lock timeouts).  It is the only error kind eligible for
// caller-side retry; all other kinds are permanent for the given input.
var ErrStorageUnavailable = errors.New("storage unavailable")

// storageErr tags an unexpected database error as transient so callers
// can tell infrastructure trouble apart from business-rule violations.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
