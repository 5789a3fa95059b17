package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinemagic/ticketing/internal/model"
)

// ShowtimeRepo manages persistence for showtimes.  Scheduling rules
// (room separation, immutability once tickets exist) are enforced by
// the scheduler service; this layer supplies the primitive queries it
// composes inside a transaction.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// CreateShowtime inserts a new showtime and assigns the generated ID
// back to the struct.  Seat provisioning happens separately in the same
// transaction via SeatRepo.ProvisionSeats.
func (r *ShowtimeRepo) CreateShowtime(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes (movie_id, room_id, starts_at, price) VALUES (?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.Price)
	if err != nil {
		return storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr(err)
	}
	s.ID = uint64(id)
	return nil
}

// UpdateShowtime rewrites a showtime's schedule fields.  Callers must
// have verified that no tickets exist; the row itself carries no guard.
func (r *ShowtimeRepo) UpdateShowtime(ctx context.Context, s *model.Showtime) error {
	const q = `UPDATE showtimes SET movie_id = ?, room_id = ?, starts_at = ?, price = ? WHERE id = ?`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.Price, s.ID); err != nil {
		return storageErr(err)
	}
	return nil
}

// DeleteShowtime removes a showtime.  Callers must have removed its
// seats and verified no tickets exist.
func (r *ShowtimeRepo) DeleteShowtime(ctx context.Context, showtimeID uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, showtimeID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

// ShowtimeByID retrieves a showtime or ErrShowtimeNotFound.
func (r *ShowtimeRepo) ShowtimeByID(ctx context.Context, showtimeID uint64) (model.Showtime, error) {
	const q = `SELECT id, movie_id, room_id, starts_at, price, created_at FROM showtimes WHERE id = ?`
	var s model.Showtime
	err := conn(ctx, r.db).QueryRowContext(ctx, q, showtimeID).Scan(
		&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.Price, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Showtime{}, ErrShowtimeNotFound
	}
	if err != nil {
		return model.Showtime{}, storageErr(err)
	}
	return s, nil
}

// HasScheduleConflict reports whether another showtime in the same room
// starts within gap of startsAt.  excludeID skips the showtime being
// updated; pass 0 on creation.
func (r *ShowtimeRepo) HasScheduleConflict(ctx context.Context, roomID uint64, startsAt time.Time, gap time.Duration, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM showtimes
	           WHERE room_id = ? AND id != ?
	           AND ABS(TIMESTAMPDIFF(MINUTE, starts_at, ?)) < ?`
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, q, roomID, excludeID, startsAt.UTC(), int(gap.Minutes())).Scan(&count)
	if err != nil {
		return false, storageErr(err)
	}
	return count > 0, nil
}

// TicketCount returns how many tickets exist against a showtime,
// regardless of state.  A nonzero count freezes the showtime.
func (r *ShowtimeRepo) TicketCount(ctx context.Context, showtimeID uint64) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE showtime_id = ?`, showtimeID).Scan(&count)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// FutureShowtimeCount returns how many upcoming showtimes are scheduled
// in a room; rooms with scheduled showtimes cannot be deleted.
func (r *ShowtimeRepo) FutureShowtimeCount(ctx context.Context, roomID uint64, now time.Time) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM showtimes WHERE room_id = ? AND starts_at > ?`, roomID, now.UTC()).Scan(&count)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// ListUpcoming returns showtimes starting after now together with their
// available-seat counts, soonest first.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context, now time.Time) ([]model.ShowtimeSummary, error) {
	const q = `SELECT st.id, st.movie_id, st.room_id, st.starts_at, st.price, st.created_at,
	                  COUNT(CASE WHEN se.state = 'available' THEN 1 END)
	           FROM showtimes st
	           LEFT JOIN seats se ON se.showtime_id = st.id
	           WHERE st.starts_at > ?
	           GROUP BY st.id
	           ORDER BY st.starts_at`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	out := make([]model.ShowtimeSummary, 0)
	for rows.Next() {
		var s model.ShowtimeSummary
		if err := rows.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.Price, &s.CreatedAt, &s.AvailableSeats); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}
