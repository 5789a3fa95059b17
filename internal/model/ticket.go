package model

import "time"

// Ticket states.  A ticket starts active; used and cancelled are both
// terminal, and only one of them can ever be reached.
const (
	TicketActive    = "active"
	TicketUsed      = "used"
	TicketCancelled = "cancelled"
)

// Ticket grants one user one seat at one showtime.  The price is a
// snapshot of the showtime price at purchase time and is immutable.
// The code is a unique human-readable token presented at the door.
//
// Fields:
//  ID          – primary key identifier.
//  PurchaseID  – purchase this ticket was created under.
//  UserID      – owner of the ticket.
//  ShowtimeID  – showtime the ticket is valid for.
//  SeatNumber  – seat number within the showtime.
//  Price       – price snapshot copied from the showtime.
//  Code        – unique ticket code ("CINE-" + 8 uppercase hex chars).
//  State       – TicketActive, TicketUsed or TicketCancelled.
//  PurchasedAt – purchase timestamp.
type Ticket struct {
	ID          uint64    `json:"id"`           // tickets.id
	PurchaseID  uint64    `json:"purchase_id"`  // tickets.purchase_id
	UserID      uint64    `json:"user_id"`      // tickets.user_id
	ShowtimeID  uint64    `json:"showtime_id"`  // tickets.showtime_id
	SeatNumber  uint32    `json:"seat_number"`  // tickets.seat_number
	Price       float64   `json:"price"`        // tickets.price
	Code        string    `json:"code"`         // tickets.code
	State       string    `json:"state"`        // tickets.state
	PurchasedAt time.Time `json:"purchased_at"` // tickets.purchased_at
}
