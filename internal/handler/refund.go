package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/service"
)

// RefundHandler exposes the staff refund-review endpoints.
type RefundHandler struct {
	Lifecycle *service.TicketLifecycleService
}

// NewRefundHandler constructs a RefundHandler.
func NewRefundHandler(lifecycle *service.TicketLifecycleService) *RefundHandler {
	if lifecycle == nil {
		panic("nil lifecycle service passed to NewRefundHandler")
	}
	return &RefundHandler{Lifecycle: lifecycle}
}

// ListPending handles GET /v1/refunds/pending, oldest first.
func (h *RefundHandler) ListPending(c echo.Context) error {
	refunds, err := h.Lifecycle.PendingRefunds(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, refunds)
}

// Approve handles POST /v1/refunds/:id/approve.
func (h *RefundHandler) Approve(c echo.Context) error {
	return h.review(c, true)
}

// Reject handles POST /v1/refunds/:id/reject.
func (h *RefundHandler) Reject(c echo.Context) error {
	return h.review(c, false)
}

func (h *RefundHandler) review(c echo.Context, approve bool) error {
	refundID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Lifecycle.ReviewRefund(c.Request().Context(), refundID, approve); err != nil {
		return writeErr(c, err)
	}
	msg := "refund rejected"
	if approve {
		msg = "refund approved"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
