package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SeatRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSeatRepo(db), mock
}

func TestClaimSeatWinsWhenAvailable(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE seats SET state = 'occupied'`).
		WithArgs(uint64(5), uint32(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ClaimSeat(context.Background(), 5, 12)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSeatLosesWhenTaken(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE seats SET state = 'occupied'`).
		WithArgs(uint64(5), uint32(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClaimSeat(context.Background(), 5, 12)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseSeatIsIdempotent(t *testing.T) {
	repo, mock := newMock(t)
	// Zero rows affected (already available) is still a success.
	mock.ExpectExec(`UPDATE seats SET state = 'available'`).
		WithArgs(uint64(5), uint32(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ReleaseSeat(context.Background(), 5, 12)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionSeatsBulkInsert(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO seats`).
		WithArgs(
			uint64(9), uint32(1),
			uint64(9), uint32(2),
			uint64(9), uint32(3),
		).
		WillReturnResult(sqlmock.NewResult(1, 3))

	err := repo.ProvisionSeats(context.Background(), 9, 3)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionSeatsZeroCapacity(t *testing.T) {
	repo, mock := newMock(t)
	// No SQL expected at all.
	require.NoError(t, repo.ProvisionSeats(context.Background(), 9, 0))
	require.NoError(t, mock.ExpectationsWereMet())
}
