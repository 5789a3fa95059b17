package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/queue"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/service"
)

// TicketHandler exposes ticket queries and lifecycle transitions.
type TicketHandler struct {
	Lifecycle *service.TicketLifecycleService
	Store     *repository.Store
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(lifecycle *service.TicketLifecycleService, store *repository.Store) *TicketHandler {
	if lifecycle == nil || store == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Lifecycle: lifecycle, Store: store}
}

// ListMine handles GET /v1/tickets.  It returns the caller's tickets,
// newest showtime first, optionally filtered by ?state=.  Staff may
// inspect another user's tickets via ?user_id=.
func (h *TicketHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if other := c.QueryParam("user_id"); other != "" {
		id, err := strconv.ParseUint(other, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		if id != userID && !isStaff(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		userID = id
	}
	state := c.QueryParam("state")
	switch state {
	case "", model.TicketActive, model.TicketUsed, model.TicketCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state filter"})
	}
	tickets, err := h.Store.TicketsByUser(c.Request().Context(), userID, state)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Get handles GET /v1/tickets/:id.  Owners see their own tickets;
// staff can inspect any ticket.
func (h *TicketHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t, _, err := h.Store.TicketWithShowtime(c.Request().Context(), ticketID)
	if err != nil {
		return writeErr(c, err)
	}
	if t.UserID != userID && !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, t)
}

// Cancel handles POST /v1/tickets/:id/cancel.  It voids the ticket,
// frees the seat and records a refund, then publishes a
// ticket.cancelled event.
func (h *TicketHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	refund, err := h.Lifecycle.Cancel(c.Request().Context(), userID, isStaff(c), ticketID)
	if err != nil {
		return writeErr(c, err)
	}

	t, _, terr := h.Store.TicketWithShowtime(c.Request().Context(), ticketID)
	if terr == nil {
		ev := queue.TicketCancelledEvent{
			TicketID:    t.ID,
			UserID:      t.UserID,
			ShowtimeID:  t.ShowtimeID,
			SeatNumber:  t.SeatNumber,
			Price:       t.Price,
			RefundState: refund.State,
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue.PublishTicketCancelled(c.Request().Context(), ev); err != nil {
			log.Printf("ticket %d: cancel event publish failed: %v", t.ID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "ticket cancelled", "refund": refund})
}

// Use handles POST /v1/tickets/:id/use, the door-scan endpoint.  It is
// restricted to staff by route middleware.
func (h *TicketHandler) Use(c echo.Context) error {
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t, err := h.Lifecycle.Use(c.Request().Context(), ticketID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}
