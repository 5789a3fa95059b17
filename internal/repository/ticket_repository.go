package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemagic/ticketing/internal/model"
)

// TicketRepo manages ticket rows.  State transitions are conditional
// UPDATEs guarded on the current state so that the two terminal states
// (used, cancelled) stay mutually exclusive even under racing requests.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTicket inserts a ticket created by checkout and assigns the
// generated ID back to the struct.
func (r *TicketRepo) CreateTicket(ctx context.Context, t *model.Ticket) error {
	const q = `INSERT INTO tickets (purchase_id, user_id, showtime_id, seat_number, price, code, state, purchased_at)
	           VALUES (?, ?, ?, ?, ?, ?, 'active', ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		t.PurchaseID, t.UserID, t.ShowtimeID, t.SeatNumber, t.Price, t.Code, t.PurchasedAt.UTC())
	if err != nil {
		return storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr(err)
	}
	t.ID = uint64(id)
	t.State = model.TicketActive
	return nil
}

// TicketWithShowtime loads a ticket together with its showtime, which
// the lifecycle manager needs for its time-window checks.
func (r *TicketRepo) TicketWithShowtime(ctx context.Context, ticketID uint64) (model.Ticket, model.Showtime, error) {
	const q = `SELECT t.id, t.purchase_id, t.user_id, t.showtime_id, t.seat_number, t.price, t.code, t.state, t.purchased_at,
	                  st.id, st.movie_id, st.room_id, st.starts_at, st.price, st.created_at
	           FROM tickets t
	           JOIN showtimes st ON st.id = t.showtime_id
	           WHERE t.id = ?`
	var t model.Ticket
	var s model.Showtime
	err := conn(ctx, r.db).QueryRowContext(ctx, q, ticketID).Scan(
		&t.ID, &t.PurchaseID, &t.UserID, &t.ShowtimeID, &t.SeatNumber, &t.Price, &t.Code, &t.State, &t.PurchasedAt,
		&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.Price, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, model.Showtime{}, ErrTicketNotFound
	}
	if err != nil {
		return model.Ticket{}, model.Showtime{}, storageErr(err)
	}
	return t, s, nil
}

// MarkUsed transitions active→used.  Zero rows affected means the
// ticket was not active (or vanished), which is ErrInvalidState for an
// existing ticket and ErrTicketNotFound otherwise.
func (r *TicketRepo) MarkUsed(ctx context.Context, ticketID uint64) error {
	return r.transition(ctx, ticketID, model.TicketUsed)
}

// MarkCancelled transitions active→cancelled under the same guard.
func (r *TicketRepo) MarkCancelled(ctx context.Context, ticketID uint64) error {
	return r.transition(ctx, ticketID, model.TicketCancelled)
}

func (r *TicketRepo) transition(ctx context.Context, ticketID uint64, to string) error {
	c := conn(ctx, r.db)
	res, err := c.ExecContext(ctx,
		`UPDATE tickets SET state = ? WHERE id = ? AND state = 'active'`, to, ticketID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		var id uint64
		err := c.QueryRowContext(ctx, `SELECT id FROM tickets WHERE id = ?`, ticketID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		if err != nil {
			return storageErr(err)
		}
		return ErrInvalidState
	}
	return nil
}

// TicketsByUser returns a user's tickets, newest showtime first,
// optionally filtered by state.
func (r *TicketRepo) TicketsByUser(ctx context.Context, userID uint64, state string) ([]model.Ticket, error) {
	q := `SELECT t.id, t.purchase_id, t.user_id, t.showtime_id, t.seat_number, t.price, t.code, t.state, t.purchased_at
	      FROM tickets t
	      JOIN showtimes st ON st.id = t.showtime_id
	      WHERE t.user_id = ?`
	args := []any{userID}
	if state != "" {
		q += ` AND t.state = ?`
		args = append(args, state)
	}
	q += ` ORDER BY st.starts_at DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.PurchaseID, &t.UserID, &t.ShowtimeID, &t.SeatNumber, &t.Price, &t.Code, &t.State, &t.PurchasedAt); err != nil {
			return nil, storageErr(err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return tickets, nil
}

// TicketsByPurchase returns the tickets created under one purchase, in
// seat order.  Used to rebuild receipts for idempotent replays.
func (r *TicketRepo) TicketsByPurchase(ctx context.Context, purchaseID uint64) ([]model.Ticket, error) {
	const q = `SELECT id, purchase_id, user_id, showtime_id, seat_number, price, code, state, purchased_at
	           FROM tickets WHERE purchase_id = ? ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, purchaseID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.PurchaseID, &t.UserID, &t.ShowtimeID, &t.SeatNumber, &t.Price, &t.Code, &t.State, &t.PurchasedAt); err != nil {
			return nil, storageErr(err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return tickets, nil
}
