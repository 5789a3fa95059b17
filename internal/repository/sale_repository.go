package repository

import (
	"context"
	"database/sql"

	"github.com/cinemagic/ticketing/internal/model"
)

// SaleRepo manages the append-only sales table.  Sales are only ever
// inserted by checkout and read back for receipts and listings.
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo returns a SaleRepo bound to the given database.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// CreateSale inserts one product line of a purchase and assigns the
// generated ID back to the struct.
func (r *SaleRepo) CreateSale(ctx context.Context, s *model.Sale) error {
	const q = `INSERT INTO sales (purchase_id, user_id, product_id, quantity, unit_price, total, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		s.PurchaseID, s.UserID, s.ProductID, s.Quantity, s.UnitPrice, s.Total, s.CreatedAt.UTC())
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

// SalesByPurchase returns the sales created under one purchase, used to
// rebuild receipts for idempotent replays.
func (r *SaleRepo) SalesByPurchase(ctx context.Context, purchaseID uint64) ([]model.Sale, error) {
	const q = `SELECT id, purchase_id, user_id, product_id, quantity, unit_price, total, created_at
	           FROM sales WHERE purchase_id = ? ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, purchaseID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	sales := make([]model.Sale, 0)
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(&s.ID, &s.PurchaseID, &s.UserID, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.Total, &s.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return sales, nil
}
