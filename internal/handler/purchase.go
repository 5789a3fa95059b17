package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/queue"
	"github.com/cinemagic/ticketing/internal/service"
)

// PurchaseHandler exposes the checkout endpoint.
type PurchaseHandler struct {
	Checkout *service.CheckoutService
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(checkout *service.CheckoutService) *PurchaseHandler {
	if checkout == nil {
		panic("nil checkout service passed to NewPurchaseHandler")
	}
	return &PurchaseHandler{Checkout: checkout}
}

// Create handles POST /v1/purchases.  The body is a PurchaseRequest;
// the idempotency key may come either in the body or in the
// X-Idempotency-Key header, with the header taking precedence.  On
// success it returns 201 with the receipt and publishes a
// purchase.completed event; publish failures are logged, never
// surfaced, since the purchase has already committed.
func (h *PurchaseHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req model.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID == 0 {
		req.UserID = userID
	}
	if key := strings.TrimSpace(c.Request().Header.Get("X-Idempotency-Key")); key != "" {
		req.IdempotencyKey = key
	}

	receipt, err := h.Checkout.Checkout(c.Request().Context(), userID, req)
	if err != nil {
		return writeErr(c, err)
	}

	codes := make([]string, 0, len(receipt.Tickets))
	for _, t := range receipt.Tickets {
		codes = append(codes, t.Code)
	}
	ev := queue.PurchaseCompletedEvent{
		Reference:   receipt.Reference,
		UserID:      userID,
		TicketCodes: codes,
		TicketCount: len(receipt.Tickets),
		SaleCount:   len(receipt.Sales),
		Total:       receipt.Total,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishPurchaseCompleted(c.Request().Context(), ev); err != nil {
		log.Printf("purchase %s: event publish failed: %v", receipt.Reference, err)
	}

	return c.JSON(http.StatusCreated, receipt)
}
