package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
)

// totalTolerance is the largest accepted drift between the declared and
// the computed purchase total, in currency units.
const totalTolerance = 0.01

// CheckoutStore is the storage surface the checkout orchestrator needs.
// *repository.Store satisfies it.
type CheckoutStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ShowtimeByID(ctx context.Context, id uint64) (model.Showtime, error)
	ClaimSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error
	ClaimStock(ctx context.Context, productID uint64, quantity uint32) (model.Product, error)
	CreatePurchase(ctx context.Context, p *model.Purchase) error
	PurchaseByKey(ctx context.Context, userID uint64, key string) (*model.Purchase, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	CreateSale(ctx context.Context, s *model.Sale) error
	TicketsByPurchase(ctx context.Context, purchaseID uint64) ([]model.Ticket, error)
	SalesByPurchase(ctx context.Context, purchaseID uint64) ([]model.Sale, error)
}

// CheckoutService executes multi-item purchases atomically: every seat
// claim, every stock decrement and every resulting record commit
// together or not at all.
type CheckoutService struct {
	store CheckoutStore
	clock clock.Clock
}

// NewCheckoutService wires the orchestrator to its storage and clock.
func NewCheckoutService(store CheckoutStore, clk clock.Clock) *CheckoutService {
	return &CheckoutService{store: store, clock: clk}
}

// Checkout processes req on behalf of callerID and returns the receipt.
//
// Items are processed in request order inside a single transaction:
// seat items claim their seat and stage a ticket, product items
// decrement stock and stage a sale.  After all claims succeed the
// computed total is checked against the declared one; any failure rolls
// every claim back.  Replaying a previously committed idempotency key
// returns the stored receipt without claiming anything again.
func (s *CheckoutService) Checkout(ctx context.Context, callerID uint64, req model.PurchaseRequest) (model.Receipt, error) {
	if req.UserID != callerID {
		return model.Receipt{}, repository.ErrForbidden
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return model.Receipt{}, ErrIdempotencyKeyRequired
	}
	if len(req.Items) == 0 {
		return model.Receipt{}, fmt.Errorf("%w: empty purchase", model.ErrInvalidLineItem)
	}
	for i := range req.Items {
		if err := req.Items[i].Validate(); err != nil {
			return model.Receipt{}, err
		}
	}

	now := s.clock.Now()
	var receipt model.Receipt
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		prior, err := s.store.PurchaseByKey(ctx, req.UserID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if prior != nil {
			if math.Abs(prior.Total-req.DeclaredTotal) > totalTolerance {
				return ErrIdempotencyConflict
			}
			return s.replay(ctx, prior, &receipt)
		}

		var (
			total   float64
			tickets []model.Ticket
			sales   []model.Sale
		)
		for _, item := range req.Items {
			switch item.Kind {
			case model.ItemSeat:
				st, err := s.store.ShowtimeByID(ctx, item.ShowtimeID)
				if err != nil {
					return err
				}
				if !st.StartsAt.After(now) {
					return ErrShowtimeExpired
				}
				if err := s.store.ClaimSeat(ctx, item.ShowtimeID, item.SeatNumber); err != nil {
					return err
				}
				code, err := newTicketCode()
				if err != nil {
					return err
				}
				tickets = append(tickets, model.Ticket{
					UserID:      req.UserID,
					ShowtimeID:  item.ShowtimeID,
					SeatNumber:  item.SeatNumber,
					Price:       st.Price,
					Code:        code,
					State:       model.TicketActive,
					PurchasedAt: now,
				})
				total += st.Price
			case model.ItemProduct:
				p, err := s.store.ClaimStock(ctx, item.ProductID, item.Quantity)
				if err != nil {
					return err
				}
				line := p.Price * float64(item.Quantity)
				sales = append(sales, model.Sale{
					UserID:    req.UserID,
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					UnitPrice: p.Price,
					Total:     line,
					CreatedAt: now,
				})
				total += line
			default:
				return fmt.Errorf("%w: kind %q", model.ErrInvalidLineItem, item.Kind)
			}
		}
		if math.Abs(total-req.DeclaredTotal) > totalTolerance {
			return ErrTotalMismatch
		}

		purchase := &model.Purchase{
			Reference:      uuid.NewString(),
			UserID:         req.UserID,
			IdempotencyKey: req.IdempotencyKey,
			Total:          total,
			CreatedAt:      now,
		}
		if err := s.store.CreatePurchase(ctx, purchase); err != nil {
			return err
		}
		for i := range tickets {
			tickets[i].PurchaseID = purchase.ID
			if err := s.store.CreateTicket(ctx, &tickets[i]); err != nil {
				return err
			}
		}
		for i := range sales {
			sales[i].PurchaseID = purchase.ID
			if err := s.store.CreateSale(ctx, &sales[i]); err != nil {
				return err
			}
		}
		receipt = model.Receipt{
			Reference: purchase.Reference,
			Total:     total,
			Tickets:   tickets,
			Sales:     sales,
		}
		return nil
	})
	if err != nil {
		return model.Receipt{}, err
	}
	return receipt, nil
}

// replay rebuilds the receipt of an already committed purchase.
func (s *CheckoutService) replay(ctx context.Context, p *model.Purchase, out *model.Receipt) error {
	tickets, err := s.store.TicketsByPurchase(ctx, p.ID)
	if err != nil {
		return err
	}
	sales, err := s.store.SalesByPurchase(ctx, p.ID)
	if err != nil {
		return err
	}
	*out = model.Receipt{
		Reference: p.Reference,
		Total:     p.Total,
		Tickets:   tickets,
		Sales:     sales,
	}
	return nil
}

// newTicketCode generates a redemption code of the form CINE-XXXXXXXX,
// where X is an uppercase hex digit.  Four random bytes give about
// 4.3 billion codes; the unique index on the tickets table catches the
// astronomically unlikely collision.
func newTicketCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("failed to generate ticket code")
	}
	return "CINE-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
