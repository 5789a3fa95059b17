package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemagic/ticketing/internal/model"
)

// RefundRepo manages refund bookkeeping records.  Review decisions are
// conditional UPDATEs guarded on the pending state so a refund can only
// be decided once.
type RefundRepo struct {
	db *sql.DB
}

// NewRefundRepo returns a RefundRepo bound to the given database.
func NewRefundRepo(db *sql.DB) *RefundRepo { return &RefundRepo{db: db} }

// CreateRefund inserts a refund record and assigns the generated ID
// back to the struct.  State must already be set by the caller (the
// lifecycle manager decides approved vs pending).
func (r *RefundRepo) CreateRefund(ctx context.Context, ref *model.Refund) error {
	const q = `INSERT INTO refunds (ticket_id, reason, state, requested_at) VALUES (?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, ref.TicketID, ref.Reason, ref.State, ref.RequestedAt.UTC())
	if err != nil {
		return storageErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storageErr(err)
	}
	ref.ID = uint64(id)
	return nil
}

// Decide moves a pending refund to approved or rejected.  Zero rows
// affected means the refund is missing or already decided.
func (r *RefundRepo) Decide(ctx context.Context, refundID uint64, state string) error {
	c := conn(ctx, r.db)
	res, err := c.ExecContext(ctx,
		`UPDATE refunds SET state = ? WHERE id = ? AND state = 'pending'`, state, refundID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		var id uint64
		err := c.QueryRowContext(ctx, `SELECT id FROM refunds WHERE id = ?`, refundID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRefundNotFound
		}
		if err != nil {
			return storageErr(err)
		}
		return ErrInvalidState
	}
	return nil
}

// ListPending returns refunds awaiting staff review, oldest first.
func (r *RefundRepo) ListPending(ctx context.Context) ([]model.Refund, error) {
	const q = `SELECT id, ticket_id, reason, state, requested_at
	           FROM refunds WHERE state = 'pending' ORDER BY requested_at`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	refunds := make([]model.Refund, 0)
	for rows.Next() {
		var ref model.Refund
		if err := rows.Scan(&ref.ID, &ref.TicketID, &ref.Reason, &ref.State, &ref.RequestedAt); err != nil {
			return nil, storageErr(err)
		}
		refunds = append(refunds, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return refunds, nil
}
