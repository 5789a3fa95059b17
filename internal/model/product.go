package model

import "time"

// Product is a concession item sold alongside tickets.  Stock is a
// finite counter decremented by the stock ledger during checkout and
// adjusted by explicit admin operations; ticket cancellation never
// restores it.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – product name.
//  Description – optional free-form description.
//  Price       – unit price; must be positive.
//  Category    – grouping used by the catalog listing.
//  Stock       – remaining units; never negative.
//  CreatedAt   – creation timestamp.
type Product struct {
	ID          uint64    `json:"id"`          // products.id
	Name        string    `json:"name"`        // products.name
	Description string    `json:"description"` // products.description
	Price       float64   `json:"price"`       // products.price
	Category    string    `json:"category"`    // products.category
	Stock       uint32    `json:"stock"`       // products.stock
	CreatedAt   time.Time `json:"created_at"`  // products.created_at
}
