package model

import "time"

// Refund states.  Self-service cancellations inside the policy window
// are created approved; cancellations performed by staff on a user's
// behalf start pending and await review.
const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

// Refund is the bookkeeping record created when a ticket is cancelled.
// Exactly one refund exists per cancelled ticket.
//
// Fields:
//  ID          – primary key identifier.
//  TicketID    – cancelled ticket this refund belongs to.
//  Reason      – free-form cancellation reason.
//  State       – RefundPending, RefundApproved or RefundRejected.
//  RequestedAt – creation timestamp.
type Refund struct {
	ID          uint64    `json:"id"`           // refunds.id
	TicketID    uint64    `json:"ticket_id"`    // refunds.ticket_id
	Reason      string    `json:"reason"`       // refunds.reason
	State       string    `json:"state"`        // refunds.state
	RequestedAt time.Time `json:"requested_at"` // refunds.requested_at
}
