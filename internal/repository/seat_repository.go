package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinemagic/ticketing/internal/model"
)

// SeatRepo is the seat ledger: it owns the seats table and the
// exclusive-claim primitive used during checkout.  Claims and releases
// are single conditional UPDATEs so that concurrent requests for the
// same seat are decided by the database, never by a read-then-write.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ProvisionSeats bulk-inserts the seat set for a freshly created
// showtime: capacity rows numbered 1..capacity, all available.  It is
// called exactly once, inside the showtime-creation transaction, so a
// failure here rolls the showtime back too and partial provisioning
// cannot persist.
func (r *SeatRepo) ProvisionSeats(ctx context.Context, showtimeID uint64, capacity uint32) error {
	if capacity == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (showtime_id, seat_number, state) VALUES `)
	args := make([]any, 0, capacity*2)
	for n := uint32(1); n <= capacity; n++ {
		if n > 1 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, 'available')")
		args = append(args, showtimeID, n)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...); err != nil {
		return storageErr(err)
	}
	return nil
}

// ClaimSeat transitions one seat from available to occupied.  The check
// and the mutation are one atomic conditional UPDATE: when zero rows
// are affected the seat is missing or already taken and the claim fails
// with ErrSeatUnavailable.  Exactly one of any number of concurrent
// claims for the same seat can succeed.
func (r *SeatRepo) ClaimSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error {
	const q = `UPDATE seats SET state = 'occupied'
	           WHERE showtime_id = ? AND seat_number = ? AND state = 'available'`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, showtimeID, seatNumber)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrSeatUnavailable
	}
	return nil
}

// ReleaseSeat transitions a seat back to available.  The release is
// deliberately unconditional and idempotent: releasing a seat that is
// already available succeeds without touching anything, so a race
// between cancellation paths can never wedge the ledger.
func (r *SeatRepo) ReleaseSeat(ctx context.Context, showtimeID uint64, seatNumber uint32) error {
	const q = `UPDATE seats SET state = 'available'
	           WHERE showtime_id = ? AND seat_number = ?`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, showtimeID, seatNumber); err != nil {
		return storageErr(err)
	}
	return nil
}

// DeleteSeats removes every seat row of a showtime.  Used when a
// showtime without sold tickets is removed or moved to another room.
func (r *SeatRepo) DeleteSeats(ctx context.Context, showtimeID uint64) error {
	const q = `DELETE FROM seats WHERE showtime_id = ?`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, showtimeID); err != nil {
		return storageErr(err)
	}
	return nil
}

// SeatsByShowtime returns every seat of a showtime ordered by number,
// for the seat-map endpoint.
func (r *SeatRepo) SeatsByShowtime(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	const q = `SELECT id, showtime_id, seat_number, state
	           FROM seats WHERE showtime_id = ? ORDER BY seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowtimeID, &s.Number, &s.State); err != nil {
			return nil, storageErr(err)
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return seats, nil
}
