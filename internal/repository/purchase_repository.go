package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemagic/ticketing/internal/model"
)

// PurchaseRepo manages purchase rows.  A purchase binds the tickets and
// sales of one checkout and carries the idempotency key that makes
// retried checkouts safe.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo returns a PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// CreatePurchase inserts a purchase and assigns the generated ID back
// to the struct.  The (user_id, idempotency_key) pair is unique at the
// schema level, so two concurrent checkouts with the same key cannot
// both commit.
func (r *PurchaseRepo) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	const q = `INSERT INTO purchases (reference, user_id, idempotency_key, total, created_at)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		p.Reference, p.UserID, p.IdempotencyKey, p.Total, p.CreatedAt.UTC())
	if err != nil {
		return storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr(err)
	}
	p.ID = uint64(id)
	return nil
}

// PurchaseByKey looks up a user's purchase by idempotency key.  It
// returns nil (not an error) when no purchase with that key exists,
// which is the common case for first-time checkouts.
func (r *PurchaseRepo) PurchaseByKey(ctx context.Context, userID uint64, key string) (*model.Purchase, error) {
	const q = `SELECT id, reference, user_id, idempotency_key, total, created_at
	           FROM purchases WHERE user_id = ? AND idempotency_key = ?`
	var p model.Purchase
	err := conn(ctx, r.db).QueryRowContext(ctx, q, userID, key).Scan(
		&p.ID, &p.Reference, &p.UserID, &p.IdempotencyKey, &p.Total, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &p, nil
}
