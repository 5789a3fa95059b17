package service

import (
	"context"
	"time"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
)

// LifecycleStore is the storage surface the ticket lifecycle needs.
// *repository.Store satisfies it.
type LifecycleStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	TicketWithShowtime(ctx context.Context, ticketID uint64) (model.Ticket, model.Showtime, error)
	MarkUsed(ctx context.Context, ticketID uint64) error
	MarkCancelled(ctx context.Context, ticketID uint64) error
	ReleaseSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error
	CreateRefund(ctx context.Context, ref *model.Refund) error
	Decide(ctx context.Context, refundID uint64, state string) error
	ListPending(ctx context.Context) ([]model.Refund, error)
}

// TicketLifecycleService drives tickets through their one-way state
// machine (active to used, active to cancelled) and manages the refund
// records that cancellations produce.
type TicketLifecycleService struct {
	store        LifecycleStore
	clock        clock.Clock
	cancelWindow time.Duration
}

// NewTicketLifecycleService builds the lifecycle service.  cancelWindow
// is how long before the showtime start cancellations stop being
// accepted.
func NewTicketLifecycleService(store LifecycleStore, clk clock.Clock, cancelWindow time.Duration) *TicketLifecycleService {
	return &TicketLifecycleService{store: store, clock: clk, cancelWindow: cancelWindow}
}

// Use marks a ticket as redeemed at the door.  Only active tickets can
// be used; the transition is enforced atomically in storage so two
// scanners racing on the same code admit exactly one person.
func (s *TicketLifecycleService) Use(ctx context.Context, ticketID uint64) (model.Ticket, error) {
	var out model.Ticket
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.MarkUsed(ctx, ticketID); err != nil {
			return err
		}
		t, _, err := s.store.TicketWithShowtime(ctx, ticketID)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	return out, nil
}

// Cancel voids an active ticket, frees its seat and records a refund.
//
// The caller must own the ticket or be staff acting on the owner's
// behalf.  Cancellation is only accepted while the current time is
// more than the cancel window before the showtime start.  A refund for
// an owner-initiated cancellation is approved on the spot; one filed
// by staff is left pending for review.
func (s *TicketLifecycleService) Cancel(ctx context.Context, callerID uint64, staff bool, ticketID uint64) (model.Refund, error) {
	now := s.clock.Now()
	var refund model.Refund
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		t, st, err := s.store.TicketWithShowtime(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.UserID != callerID && !staff {
			return repository.ErrForbidden
		}
		if t.State != model.TicketActive {
			return repository.ErrInvalidState
		}
		if !st.StartsAt.After(now) {
			return ErrShowtimeStarted
		}
		if now.After(st.StartsAt.Add(-s.cancelWindow)) {
			return ErrCancellationWindowClosed
		}
		if err := s.store.MarkCancelled(ctx, ticketID); err != nil {
			return err
		}
		if err := s.store.ReleaseSeat(ctx, t.ShowtimeID, t.SeatNumber); err != nil {
			return err
		}
		refund = model.Refund{
			TicketID:    ticketID,
			Reason:      "cancelled by user",
			State:       model.RefundApproved,
			RequestedAt: now,
		}
		if t.UserID != callerID {
			refund.Reason = "cancelled by staff"
			refund.State = model.RefundPending
		}
		return s.store.CreateRefund(ctx, &refund)
	})
	if err != nil {
		return model.Refund{}, err
	}
	return refund, nil
}

// PendingRefunds lists refunds awaiting review, oldest first.
func (s *TicketLifecycleService) PendingRefunds(ctx context.Context) ([]model.Refund, error) {
	return s.store.ListPending(ctx)
}

// ReviewRefund settles a pending refund as approved or rejected.
func (s *TicketLifecycleService) ReviewRefund(ctx context.Context, refundID uint64, approve bool) error {
	state := model.RefundRejected
	if approve {
		state = model.RefundApproved
	}
	return s.store.Decide(ctx, refundID, state)
}
