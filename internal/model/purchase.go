package model

import (
	"errors"
	"time"
)

// Line item kinds.  A purchase mixes seat claims and product sales in
// a single atomic request.
const (
	ItemSeat    = "seat"
	ItemProduct = "product"
)

// ErrInvalidLineItem is returned by LineItem.Validate when a line item
// is malformed (unknown kind, missing reference or zero quantity).
// Validation happens at the HTTP boundary so the checkout service only
// ever sees well-formed items.
var ErrInvalidLineItem = errors.New("invalid line item")

// LineItem is a tagged variant: either a seat claim or a product
// purchase.  Kind selects which of the two field groups is meaningful.
type LineItem struct {
	Kind       string `json:"kind"`                  // ItemSeat or ItemProduct
	ShowtimeID uint64 `json:"showtime_id,omitempty"` // seat items only
	SeatNumber uint32 `json:"seat_number,omitempty"` // seat items only
	ProductID  uint64 `json:"product_id,omitempty"`  // product items only
	Quantity   uint32 `json:"quantity,omitempty"`    // product items only
}

// Validate checks that the line item carries exactly the fields its
// kind requires.
func (li LineItem) Validate() error {
	switch li.Kind {
	case ItemSeat:
		if li.ShowtimeID == 0 || li.SeatNumber == 0 {
			return ErrInvalidLineItem
		}
	case ItemProduct:
		if li.ProductID == 0 || li.Quantity == 0 {
			return ErrInvalidLineItem
		}
	default:
		return ErrInvalidLineItem
	}
	return nil
}

// PurchaseRequest is the transient aggregate submitted to checkout.  It
// is never persisted as-is; the orchestrator turns it into a Purchase
// row plus Ticket and Sale records.  DeclaredTotal is the client's view
// of the total and is verified, not trusted.
type PurchaseRequest struct {
	UserID         uint64     `json:"user_id"`
	IdempotencyKey string     `json:"idempotency_key"`
	Items          []LineItem `json:"items"`
	DeclaredTotal  float64    `json:"total"`
}

// Purchase groups the tickets and sales created by one checkout.  The
// reference is an opaque identifier safe to expose to clients, and the
// idempotency key makes retried checkouts safe: a replay with the same
// key returns the stored receipt instead of claiming again.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – public purchase reference (UUID).
//  UserID         – buyer.
//  IdempotencyKey – client-supplied key, unique per user.
//  Total          – server-computed total.
//  CreatedAt      – commit timestamp.
type Purchase struct {
	ID             uint64    `json:"id"`              // purchases.id
	Reference      string    `json:"reference"`       // purchases.reference
	UserID         uint64    `json:"user_id"`         // purchases.user_id
	IdempotencyKey string    `json:"idempotency_key"` // purchases.idempotency_key
	Total          float64   `json:"total"`           // purchases.total
	CreatedAt      time.Time `json:"created_at"`      // purchases.created_at
}

// Receipt is returned to the client after a successful checkout.  The
// total is always the server-computed one.
type Receipt struct {
	Reference string   `json:"reference"`
	Total     float64  `json:"total"`
	Tickets   []Ticket `json:"tickets"`
	Sales     []Sale   `json:"sales"`
}
