// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into the sales journal.
package queue

// PurchaseCompletedEvent is published when a checkout commits. It carries
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type PurchaseCompletedEvent struct {
	Reference   string   `json:"reference"`
	UserID      uint64   `json:"user_id"`
	TicketCodes []string `json:"ticket_codes"`
	TicketCount int      `json:"ticket_count"`
	SaleCount   int      `json:"sale_count"`
	Total       float64  `json:"total"`
	CompletedAt string   `json:"completed_at"`
}

// TicketCancelledEvent is published when a ticket is cancelled and its
// seat returns to the pool.
type TicketCancelledEvent struct {
	TicketID    uint64  `json:"ticket_id"`
	UserID      uint64  `json:"user_id"`
	ShowtimeID  uint64  `json:"showtime_id"`
	SeatNumber  uint32  `json:"seat_number"`
	Price       float64 `json:"price"`
	RefundState string  `json:"refund_state"`
	CancelledAt string  `json:"cancelled_at"`
}
