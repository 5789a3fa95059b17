package repository

import (
	"context"
	"database/sql"
)

// Store bundles every repository over one shared DB handle and exposes
// the transaction runner.  Services declare narrow interfaces for the
// slices of Store they need; Store satisfies them all through method
// promotion, and tests substitute in-memory fakes.
type Store struct {
	*RoomRepo
	*ShowtimeRepo
	*SeatRepo
	*ProductRepo
	*TicketRepo
	*SaleRepo
	*PurchaseRepo
	*RefundRepo

	db *sql.DB
}

// NewStore constructs a Store and all of its repositories over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		RoomRepo:     NewRoomRepo(db),
		ShowtimeRepo: NewShowtimeRepo(db),
		SeatRepo:     NewSeatRepo(db),
		ProductRepo:  NewProductRepo(db),
		TicketRepo:   NewTicketRepo(db),
		SaleRepo:     NewSaleRepo(db),
		PurchaseRepo: NewPurchaseRepo(db),
		RefundRepo:   NewRefundRepo(db),
		db:           db,
	}
}

// WithTx runs fn inside a transaction spanning every repository of this
// store.  See the package-level WithTx for the semantics.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, s.db, fn)
}
