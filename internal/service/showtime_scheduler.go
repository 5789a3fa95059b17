package service

import (
	"context"
	"errors"
	"time"

	"github.com/cinemagic/ticketing/internal/clock"
	"github.com/cinemagic/ticketing/internal/model"
	"github.com/cinemagic/ticketing/internal/repository"
)

// ErrInvalidPrice is returned when a showtime is scheduled with a
// non-positive price.
var ErrInvalidPrice = errors.New("price must be positive")

// SchedulerStore is the storage surface the scheduler needs.
// *repository.Store satisfies it.
type SchedulerStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	RoomByID(ctx context.Context, roomID uint64) (model.Room, error)
	HasScheduleConflict(ctx context.Context, roomID uint64, startsAt time.Time, gap time.Duration, excludeID uint64) (bool, error)
	CreateShowtime(ctx context.Context, s *model.Showtime) error
	UpdateShowtime(ctx context.Context, s *model.Showtime) error
	DeleteShowtime(ctx context.Context, showtimeID uint64) error
	ShowtimeByID(ctx context.Context, showtimeID uint64) (model.Showtime, error)
	TicketCount(ctx context.Context, showtimeID uint64) (int, error)
	FutureShowtimeCount(ctx context.Context, roomID uint64, now time.Time) (int, error)
	ProvisionSeats(ctx context.Context, showtimeID uint64, capacity uint32) error
	DeleteSeats(ctx context.Context, showtimeID uint64) error
	DeleteRoom(ctx context.Context, roomID uint64) error
}

// ShowtimeScheduler creates and maintains showtimes.  Scheduling a
// showtime materializes one seat row per unit of room capacity in the
// same transaction, so a showtime is never visible without its seat
// inventory.
type ShowtimeScheduler struct {
	store SchedulerStore
	clock clock.Clock
	gap   time.Duration
}

// NewShowtimeScheduler builds the scheduler.  gap is the minimum
// separation between two showtimes in the same room.
func NewShowtimeScheduler(store SchedulerStore, clk clock.Clock, gap time.Duration) *ShowtimeScheduler {
	return &ShowtimeScheduler{store: store, clock: clk, gap: gap}
}

// Schedule creates a showtime and provisions its seats.
func (s *ShowtimeScheduler) Schedule(ctx context.Context, st *model.Showtime) error {
	if st.Price <= 0 {
		return ErrInvalidPrice
	}
	st.CreatedAt = s.clock.Now()
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		room, err := s.store.RoomByID(ctx, st.RoomID)
		if err != nil {
			return err
		}
		conflict, err := s.store.HasScheduleConflict(ctx, st.RoomID, st.StartsAt, s.gap, 0)
		if err != nil {
			return err
		}
		if conflict {
			return repository.ErrScheduleConflict
		}
		if err := s.store.CreateShowtime(ctx, st); err != nil {
			return err
		}
		return s.store.ProvisionSeats(ctx, st.ID, room.Capacity)
	})
}

// Reschedule updates a showtime that has no sold tickets.  Moving it to
// a different room rebuilds the seat inventory for the new capacity.
func (s *ShowtimeScheduler) Reschedule(ctx context.Context, st *model.Showtime) error {
	if st.Price <= 0 {
		return ErrInvalidPrice
	}
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.store.ShowtimeByID(ctx, st.ID)
		if err != nil {
			return err
		}
		sold, err := s.store.TicketCount(ctx, st.ID)
		if err != nil {
			return err
		}
		if sold > 0 {
			return repository.ErrConflict
		}
		room, err := s.store.RoomByID(ctx, st.RoomID)
		if err != nil {
			return err
		}
		conflict, err := s.store.HasScheduleConflict(ctx, st.RoomID, st.StartsAt, s.gap, st.ID)
		if err != nil {
			return err
		}
		if conflict {
			return repository.ErrScheduleConflict
		}
		if err := s.store.UpdateShowtime(ctx, st); err != nil {
			return err
		}
		if current.RoomID != st.RoomID {
			if err := s.store.DeleteSeats(ctx, st.ID); err != nil {
				return err
			}
			return s.store.ProvisionSeats(ctx, st.ID, room.Capacity)
		}
		return nil
	})
}

// Remove deletes a showtime and its seats.  Showtimes with sold
// tickets cannot be removed.
func (s *ShowtimeScheduler) Remove(ctx context.Context, showtimeID uint64) error {
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.ShowtimeByID(ctx, showtimeID); err != nil {
			return err
		}
		sold, err := s.store.TicketCount(ctx, showtimeID)
		if err != nil {
			return err
		}
		if sold > 0 {
			return repository.ErrConflict
		}
		if err := s.store.DeleteSeats(ctx, showtimeID); err != nil {
			return err
		}
		return s.store.DeleteShowtime(ctx, showtimeID)
	})
}

// RemoveRoom deletes a room that has no upcoming showtimes.
func (s *ShowtimeScheduler) RemoveRoom(ctx context.Context, roomID uint64) error {
	now := s.clock.Now()
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		upcoming, err := s.store.FutureShowtimeCount(ctx, roomID, now)
		if err != nil {
			return err
		}
		if upcoming > 0 {
			return repository.ErrConflict
		}
		return s.store.DeleteRoom(ctx, roomID)
	})
}
