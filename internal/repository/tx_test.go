package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE seats SET state = 'occupied'`).
		WithArgs(uint64(1), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seats := NewSeatRepo(db)
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		return seats.ClaimSeat(ctx, 1, 1)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE seats SET state = 'occupied'`).
		WithArgs(uint64(1), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seats SET state = 'occupied'`).
		WithArgs(uint64(1), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	seats := NewSeatRepo(db)
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		if err := seats.ClaimSeat(ctx, 1, 1); err != nil {
			return err
		}
		return seats.ClaimSeat(ctx, 1, 2)
	})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxNestedCallReusesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// Exactly one begin/commit pair despite the nested WithTx.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE seats SET state = 'available'`).
		WithArgs(uint64(1), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seats := NewSeatRepo(db)
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		return WithTx(ctx, db, func(ctx context.Context) error {
			return seats.ReleaseSeat(ctx, 1, 1)
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxPropagatesFnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
