package model

import "time"

// Sale records one product line of a purchase.  Sales are append-only:
// they are never mutated or deleted, and cancelling a ticket from the
// same purchase does not touch them.
//
// Fields:
//  ID         – primary key identifier.
//  PurchaseID – purchase this sale was created under.
//  UserID     – buyer.
//  ProductID  – product sold.
//  Quantity   – units sold; must be positive.
//  UnitPrice  – price snapshot per unit at purchase time.
//  Total      – UnitPrice × Quantity, stored for convenience.
//  CreatedAt  – purchase timestamp.
type Sale struct {
	ID         uint64    `json:"id"`          // sales.id
	PurchaseID uint64    `json:"purchase_id"` // sales.purchase_id
	UserID     uint64    `json:"user_id"`     // sales.user_id
	ProductID  uint64    `json:"product_id"`  // sales.product_id
	Quantity   uint32    `json:"quantity"`    // sales.quantity
	UnitPrice  float64   `json:"unit_price"`  // sales.unit_price
	Total      float64   `json:"total"`       // sales.total
	CreatedAt  time.Time `json:"created_at"`  // sales.created_at
}
