package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
)

// seatKey identifies one seat of one showtime.
type seatKey struct {
	showtimeID uint64
	seatNumber uint32
}

// fakeStore is an in-memory stand-in for *repository.Store.  WithTx
// serializes callers with a mutex, the way InnoDB row locks serialize
// conflicting claims, and snapshots all state before running fn so a
// failed transaction observably rolls back.
type fakeStore struct {
	mu sync.Mutex

	rooms     map[uint64]model.Room
	showtimes map[uint64]model.Showtime
	seats     map[seatKey]string
	products  map[uint64]model.Product
	purchases map[string]model.Purchase // keyed user_id|idempotency_key
	tickets   map[uint64]model.Ticket
	sales     map[uint64]model.Sale
	refunds   map[uint64]model.Refund

	ticketCounts map[uint64]int // sold tickets per showtime, for scheduler guards

	failProvision bool // inject a seat-provisioning failure

	nextID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        map[uint64]model.Room{},
		showtimes:    map[uint64]model.Showtime{},
		seats:        map[seatKey]string{},
		products:     map[uint64]model.Product{},
		purchases:    map[string]model.Purchase{},
		tickets:      map[uint64]model.Ticket{},
		sales:        map[uint64]model.Sale{},
		refunds:      map[uint64]model.Refund{},
		ticketCounts: map[uint64]int{},
	}
}

func (f *fakeStore) id() uint64 {
	f.nextID++
	return f.nextID
}

func purchaseKey(userID uint64, key string) string {
	return fmt.Sprintf("%d|%s", userID, key)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithTx locks the store for the duration of fn and restores the
// pre-transaction snapshot when fn fails.
func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rooms := cloneMap(f.rooms)
	showtimes := cloneMap(f.showtimes)
	seats := cloneMap(f.seats)
	products := cloneMap(f.products)
	purchases := cloneMap(f.purchases)
	tickets := cloneMap(f.tickets)
	sales := cloneMap(f.sales)
	refunds := cloneMap(f.refunds)
	counts := cloneMap(f.ticketCounts)
	nextID := f.nextID

	if err := fn(ctx); err != nil {
		f.rooms = rooms
		f.showtimes = showtimes
		f.seats = seats
		f.products = products
		f.purchases = purchases
		f.tickets = tickets
		f.sales = sales
		f.refunds = refunds
		f.ticketCounts = counts
		f.nextID = nextID
		return err
	}
	return nil
}

// --- fixtures ---

func (f *fakeStore) addRoom(capacity uint32) model.Room {
	r := model.Room{ID: f.id(), Name: fmt.Sprintf("Room %d", f.nextID), Capacity: capacity, Kind: "2D"}
	f.rooms[r.ID] = r
	return r
}

func (f *fakeStore) addShowtime(roomID uint64, startsAt time.Time, price float64, capacity uint32) model.Showtime {
	st := model.Showtime{ID: f.id(), MovieID: 1, RoomID: roomID, StartsAt: startsAt, Price: price}
	f.showtimes[st.ID] = st
	for n := uint32(1); n <= capacity; n++ {
		f.seats[seatKey{st.ID, n}] = model.SeatAvailable
	}
	return st
}

func (f *fakeStore) addProduct(price float64, stock uint32) model.Product {
	p := model.Product{ID: f.id(), Name: fmt.Sprintf("Product %d", f.nextID), Price: price, Stock: stock}
	f.products[p.ID] = p
	return p
}

func (f *fakeStore) addTicket(userID, showtimeID uint64, seat uint32, price float64, state string) model.Ticket {
	t := model.Ticket{
		ID: f.id(), PurchaseID: 1, UserID: userID, ShowtimeID: showtimeID,
		SeatNumber: seat, Price: price, Code: "CINE-00000000", State: state,
	}
	f.tickets[t.ID] = t
	f.seats[seatKey{showtimeID, seat}] = model.SeatOccupied
	if state == model.TicketActive || state == model.TicketUsed {
		f.ticketCounts[showtimeID]++
	}
	return t
}

// --- CheckoutStore ---

func (f *fakeStore) ShowtimeByID(ctx context.Context, id uint64) (model.Showtime, error) {
	st, ok := f.showtimes[id]
	if !ok {
		return model.Showtime{}, repository.ErrShowtimeNotFound
	}
	return st, nil
}

func (f *fakeStore) ClaimSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error {
	k := seatKey{showtimeID, seatNumber}
	if f.seats[k] != model.SeatAvailable {
		return repository.ErrSeatUnavailable
	}
	f.seats[k] = model.SeatOccupied
	return nil
}

func (f *fakeStore) ReleaseSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error {
	f.seats[seatKey{showtimeID, seatNumber}] = model.SeatAvailable
	return nil
}

func (f *fakeStore) ClaimStock(ctx context.Context, productID uint64, qty uint32) (model.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return model.Product{}, repository.ErrProductNotFound
	}
	if p.Stock < qty {
		return model.Product{}, repository.ErrInsufficientStock
	}
	prior := p.Stock
	p.Stock -= qty
	f.products[productID] = p
	p.Stock = prior
	return p, nil
}

func (f *fakeStore) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	p.ID = f.id()
	f.purchases[purchaseKey(p.UserID, p.IdempotencyKey)] = *p
	return nil
}

func (f *fakeStore) PurchaseByKey(ctx context.Context, userID uint64, key string) (*model.Purchase, error) {
	p, ok := f.purchases[purchaseKey(userID, key)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) CreateTicket(ctx context.Context, t *model.Ticket) error {
	t.ID = f.id()
	f.tickets[t.ID] = *t
	f.ticketCounts[t.ShowtimeID]++
	return nil
}

func (f *fakeStore) CreateSale(ctx context.Context, s *model.Sale) error {
	s.ID = f.id()
	f.sales[s.ID] = *s
	return nil
}

func (f *fakeStore) TicketsByPurchase(ctx context.Context, purchaseID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, t := range f.tickets {
		if t.PurchaseID == purchaseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) SalesByPurchase(ctx context.Context, purchaseID uint64) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range f.sales {
		if s.PurchaseID == purchaseID {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- LifecycleStore ---

func (f *fakeStore) TicketWithShowtime(ctx context.Context, ticketID uint64) (model.Ticket, model.Showtime, error) {
	t, ok := f.tickets[ticketID]
	if !ok {
		return model.Ticket{}, model.Showtime{}, repository.ErrTicketNotFound
	}
	st := f.showtimes[t.ShowtimeID]
	return t, st, nil
}

func (f *fakeStore) MarkUsed(ctx context.Context, ticketID uint64) error {
	return f.transition(ticketID, model.TicketUsed)
}

func (f *fakeStore) MarkCancelled(ctx context.Context, ticketID uint64) error {
	return f.transition(ticketID, model.TicketCancelled)
}

func (f *fakeStore) transition(ticketID uint64, to string) error {
	t, ok := f.tickets[ticketID]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.State != model.TicketActive {
		return repository.ErrInvalidState
	}
	t.State = to
	f.tickets[ticketID] = t
	return nil
}

func (f *fakeStore) CreateRefund(ctx context.Context, ref *model.Refund) error {
	ref.ID = f.id()
	f.refunds[ref.ID] = *ref
	return nil
}

func (f *fakeStore) Decide(ctx context.Context, refundID uint64, state string) error {
	r, ok := f.refunds[refundID]
	if !ok {
		return repository.ErrRefundNotFound
	}
	if r.State != model.RefundPending {
		return repository.ErrInvalidState
	}
	r.State = state
	f.refunds[refundID] = r
	return nil
}

func (f *fakeStore) ListPending(ctx context.Context) ([]model.Refund, error) {
	var out []model.Refund
	for _, r := range f.refunds {
		if r.State == model.RefundPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- SchedulerStore ---

func (f *fakeStore) RoomByID(ctx context.Context, roomID uint64) (model.Room, error) {
	r, ok := f.rooms[roomID]
	if !ok {
		return model.Room{}, repository.ErrRoomNotFound
	}
	return r, nil
}

func (f *fakeStore) HasScheduleConflict(ctx context.Context, roomID uint64, startsAt time.Time, gap time.Duration, excludeID uint64) (bool, error) {
	for _, st := range f.showtimes {
		if st.RoomID != roomID || st.ID == excludeID {
			continue
		}
		d := st.StartsAt.Sub(startsAt)
		if d < 0 {
			d = -d
		}
		if d < gap {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateShowtime(ctx context.Context, st *model.Showtime) error {
	st.ID = f.id()
	f.showtimes[st.ID] = *st
	return nil
}

func (f *fakeStore) UpdateShowtime(ctx context.Context, st *model.Showtime) error {
	if _, ok := f.showtimes[st.ID]; !ok {
		return repository.ErrShowtimeNotFound
	}
	f.showtimes[st.ID] = *st
	return nil
}

func (f *fakeStore) DeleteShowtime(ctx context.Context, showtimeID uint64) error {
	if _, ok := f.showtimes[showtimeID]; !ok {
		return repository.ErrShowtimeNotFound
	}
	delete(f.showtimes, showtimeID)
	return nil
}

func (f *fakeStore) TicketCount(ctx context.Context, showtimeID uint64) (int, error) {
	return f.ticketCounts[showtimeID], nil
}

func (f *fakeStore) FutureShowtimeCount(ctx context.Context, roomID uint64, now time.Time) (int, error) {
	n := 0
	for _, st := range f.showtimes {
		if st.RoomID == roomID && st.StartsAt.After(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ProvisionSeats(ctx context.Context, showtimeID uint64, capacity uint32) error {
	if f.failProvision {
		return repository.ErrStorageUnavailable
	}
	for n := uint32(1); n <= capacity; n++ {
		f.seats[seatKey{showtimeID, n}] = model.SeatAvailable
	}
	return nil
}

func (f *fakeStore) DeleteSeats(ctx context.Context, showtimeID uint64) error {
	for k := range f.seats {
		if k.showtimeID == showtimeID {
			delete(f.seats, k)
		}
	}
	return nil
}

func (f *fakeStore) DeleteRoom(ctx context.Context, roomID uint64) error {
	if _, ok := f.rooms[roomID]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(f.rooms, roomID)
	return nil
}

// seatCount returns how many seats of a showtime are in the given state.
func (f *fakeStore) seatCount(showtimeID uint64, state string) int {
	n := 0
	for k, s := range f.seats {
		if k.showtimeID == showtimeID && s == state {
			n++
		}
	}
	return n
}
