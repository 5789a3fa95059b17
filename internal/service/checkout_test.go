package service_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
	"github.com/cinemagic/ticketing/internal/service"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newCheckout(f *fakeStore) *service.CheckoutService {
	return service.NewCheckoutService(f, clock.NewFixed(baseTime))
}

func TestCheckoutMixedItems(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(4*time.Hour), 12.50, room.Capacity)
	p := f.addProduct(5.00, 20)

	svc := newCheckout(f)
	receipt, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:         7,
		IdempotencyKey: "k-1",
		Items: []model.LineItem{
			{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 3},
			{Kind: model.ItemProduct, ProductID: p.ID, Quantity: 2},
		},
		DeclaredTotal: 22.50,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.Reference)
	assert.InDelta(t, 22.50, receipt.Total, 0.001)
	require.Len(t, receipt.Tickets, 1)
	require.Len(t, receipt.Sales, 1)

	tk := receipt.Tickets[0]
	assert.Equal(t, model.TicketActive, tk.State)
	assert.Equal(t, st.ID, tk.ShowtimeID)
	assert.InDelta(t, 12.50, tk.Price, 0.001)
	assert.Equal(t, model.SeatOccupied, f.seats[seatKey{st.ID, 3}])

	sale := receipt.Sales[0]
	assert.Equal(t, uint32(2), sale.Quantity)
	assert.InDelta(t, 5.00, sale.UnitPrice, 0.001)
	assert.InDelta(t, 10.00, sale.Total, 0.001)
	assert.Equal(t, uint32(18), f.products[p.ID].Stock)
}

func TestCheckoutTicketCodeFormat(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(5)
	st := f.addShowtime(room.ID, baseTime.Add(time.Hour), 10, room.Capacity)

	svc := newCheckout(f)
	codeRe := regexp.MustCompile(`^CINE-[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for n := uint32(1); n <= 5; n++ {
		receipt, err := svc.Checkout(context.Background(), 1, model.PurchaseRequest{
			UserID:         1,
			IdempotencyKey: fmt.Sprintf("k-%d", n),
			Items:          []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: n}},
			DeclaredTotal:  10,
		})
		require.NoError(t, err)
		code := receipt.Tickets[0].Code
		assert.Regexp(t, codeRe, code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestCheckoutTotalMismatch(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(4*time.Hour), 12.50, room.Capacity)
	p := f.addProduct(5.00, 20)

	svc := newCheckout(f)
	_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:         7,
		IdempotencyKey: "k-1",
		Items: []model.LineItem{
			{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 3},
			{Kind: model.ItemProduct, ProductID: p.ID, Quantity: 2},
		},
		DeclaredTotal: 22.49,
	})
	require.ErrorIs(t, err, service.ErrTotalMismatch)

	// The rejected checkout must leave no trace.
	assert.Equal(t, model.SeatAvailable, f.seats[seatKey{st.ID, 3}])
	assert.Equal(t, uint32(20), f.products[p.ID].Stock)
	assert.Empty(t, f.tickets)
	assert.Empty(t, f.sales)
	assert.Empty(t, f.purchases)
}

func TestCheckoutRollsBackEarlierClaims(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(4*time.Hour), 12.50, room.Capacity)
	p := f.addProduct(5.00, 1)

	svc := newCheckout(f)
	_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:         7,
		IdempotencyKey: "k-1",
		Items: []model.LineItem{
			{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 3},
			{Kind: model.ItemProduct, ProductID: p.ID, Quantity: 5},
		},
		DeclaredTotal: 37.50,
	})
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	// The seat claimed before the stock failure is available again.
	assert.Equal(t, model.SeatAvailable, f.seats[seatKey{st.ID, 3}])
	assert.Empty(t, f.tickets)
}

func TestCheckoutExpiredShowtime(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(-time.Minute), 12.50, room.Capacity)

	svc := newCheckout(f)
	_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:         7,
		IdempotencyKey: "k-1",
		Items:          []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 1}},
		DeclaredTotal:  12.50,
	})
	require.ErrorIs(t, err, service.ErrShowtimeExpired)
	assert.Equal(t, model.SeatAvailable, f.seats[seatKey{st.ID, 1}])
}

func TestCheckoutForbiddenForOtherUser(t *testing.T) {
	f := newFakeStore()
	svc := newCheckout(f)
	_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:         8,
		IdempotencyKey: "k-1",
		Items:          []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: 1, SeatNumber: 1}},
		DeclaredTotal:  10,
	})
	require.ErrorIs(t, err, repository.ErrForbidden)
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	f := newFakeStore()
	svc := newCheckout(f)
	_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
		UserID:        7,
		Items:         []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: 1, SeatNumber: 1}},
		DeclaredTotal: 10,
	})
	require.ErrorIs(t, err, service.ErrIdempotencyKeyRequired)
}

func TestCheckoutRejectsMalformedItems(t *testing.T) {
	f := newFakeStore()
	svc := newCheckout(f)

	for _, item := range []model.LineItem{
		{Kind: "voucher"},
		{Kind: model.ItemSeat, ShowtimeID: 1},                // missing seat number
		{Kind: model.ItemProduct, ProductID: 1, Quantity: 0}, // zero quantity
	} {
		_, err := svc.Checkout(context.Background(), 7, model.PurchaseRequest{
			UserID:         7,
			IdempotencyKey: "k-1",
			Items:          []model.LineItem{item},
			DeclaredTotal:  10,
		})
		require.ErrorIs(t, err, model.ErrInvalidLineItem)
	}
}

func TestCheckoutIdempotentReplay(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(4*time.Hour), 12.50, room.Capacity)

	svc := newCheckout(f)
	req := model.PurchaseRequest{
		UserID:         7,
		IdempotencyKey: "retry-me",
		Items:          []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 3}},
		DeclaredTotal:  12.50,
	}
	first, err := svc.Checkout(context.Background(), 7, req)
	require.NoError(t, err)

	second, err := svc.Checkout(context.Background(), 7, req)
	require.NoError(t, err)

	assert.Equal(t, first.Reference, second.Reference)
	assert.InDelta(t, first.Total, second.Total, 0.001)
	assert.Len(t, f.tickets, 1, "replay must not create new tickets")
	assert.Len(t, f.purchases, 1)

	// Same key, different total: conflict.
	req.DeclaredTotal = 99
	_, err = svc.Checkout(context.Background(), 7, req)
	require.ErrorIs(t, err, service.ErrIdempotencyConflict)
}

func TestCheckoutConcurrentSeatClaims(t *testing.T) {
	f := newFakeStore()
	room := f.addRoom(10)
	st := f.addShowtime(room.ID, baseTime.Add(4*time.Hour), 12.50, room.Capacity)

	svc := newCheckout(f)
	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), uint64(i+1), model.PurchaseRequest{
				UserID:         uint64(i + 1),
				IdempotencyKey: fmt.Sprintf("k-%d", i),
				Items:          []model.LineItem{{Kind: model.ItemSeat, ShowtimeID: st.ID, SeatNumber: 5}},
				DeclaredTotal:  12.50,
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, repository.ErrSeatUnavailable)
		}
	}
	assert.Equal(t, 1, won, "exactly one claim must win the seat")
	assert.Len(t, f.tickets, 1)
}

func TestCheckoutConcurrentStockClaims(t *testing.T) {
	f := newFakeStore()
	p := f.addProduct(5.00, 5)

	svc := newCheckout(f)
	const workers = 12
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), uint64(i+1), model.PurchaseRequest{
				UserID:         uint64(i + 1),
				IdempotencyKey: fmt.Sprintf("k-%d", i),
				Items:          []model.LineItem{{Kind: model.ItemProduct, ProductID: p.ID, Quantity: 1}},
				DeclaredTotal:  5.00,
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, repository.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 5, won, "sold quantity must match the stock that existed")
	assert.Equal(t, uint32(0), f.products[p.ID].Stock)
}
