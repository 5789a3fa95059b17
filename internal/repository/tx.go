package repository

import (
	"context"
	"database/sql"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories use.  Every
// repository method resolves its handle through the context so a method
// called inside WithTx automatically participates in that transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried on the context, or the plain DB
// handle when the caller is not inside WithTx.
func conn(ctx context.Context, db *sql.DB) dbtx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// WithTx runs fn inside a database transaction carried on the context.
// A nested call reuses the outer transaction, so a service can compose
// repository operations without repositories knowing about each other.
// fn returning an error rolls everything back; the checkout atomicity
// guarantee rests on this single commit point.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr(err)
	}
	return nil
}
