package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemagic/ticketing/internal/model"
)

// ProductRepo owns the products table and the stock ledger.  Stock
// decrements during checkout and admin adjustments both go through
// atomic conditional UPDATEs guarded against negative stock; the sum of
// successful claims can therefore never exceed the stock that was
// actually there.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// ClaimStock decrements a product's stock by qty only when enough stock
// remains, in a single conditional UPDATE.  On success it returns the
// product with Stock holding the PRIOR level and Price holding the unit
// price read in the same transaction, which the checkout uses for its
// price snapshot.  A failed condition is ErrInsufficientStock when the
// product exists and ErrProductNotFound otherwise.
func (r *ProductRepo) ClaimStock(ctx context.Context, productID uint64, qty uint32) (model.Product, error) {
	c := conn(ctx, r.db)
	const upd = `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`
	res, err := c.ExecContext(ctx, upd, qty, productID, qty)
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	if n == 0 {
		// Distinguish a missing product from an empty shelf.
		var id uint64
		err := c.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ?`, productID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		if err != nil {
			return model.Product{}, storageErr(err)
		}
		return model.Product{}, ErrInsufficientStock
	}
	p, err := r.getWith(ctx, c, productID)
	if err != nil {
		return model.Product{}, err
	}
	p.Stock += qty // report the pre-claim level
	return p, nil
}

// AdjustStock applies an admin stock adjustment and returns the prior
// and new levels.  add increments unconditionally; subtract uses the
// same conditional form as ClaimStock so the counter can never go
// negative, failing with ErrInsufficientStock instead.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID uint64, qty uint32, subtract bool) (prior, current uint32, err error) {
	c := conn(ctx, r.db)
	var res sql.Result
	if subtract {
		res, err = c.ExecContext(ctx, `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, productID, qty)
	} else {
		res, err = c.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, qty, productID)
	}
	if err != nil {
		return 0, 0, storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, 0, storageErr(err)
	}
	if n == 0 {
		var id uint64
		err := c.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ?`, productID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrProductNotFound
		}
		if err != nil {
			return 0, 0, storageErr(err)
		}
		return 0, 0, ErrInsufficientStock
	}
	p, err := r.getWith(ctx, c, productID)
	if err != nil {
		return 0, 0, err
	}
	if subtract {
		return p.Stock + qty, p.Stock, nil
	}
	return p.Stock - qty, p.Stock, nil
}

// CreateProduct inserts a new product and assigns the generated ID back to the
// struct.
func (r *ProductRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products (name, description, price, category, stock) VALUES (?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, p.Name, p.Description, p.Price, p.Category, p.Stock)
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

// UpdateProduct rewrites a product's catalog fields.  Stock is not touched
// here; it moves only through ClaimStock and AdjustStock.
func (r *ProductRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	const q = `UPDATE products SET name = ?, description = ?, price = ?, category = ? WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, p.Name, p.Description, p.Price, p.Category, p.ID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		// Zero rows can also mean an identical update; confirm existence.
		var id uint64
		if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT id FROM products WHERE id = ?`, p.ID).Scan(&id); errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		} else if err != nil {
			return storageErr(err)
		}
	}
	return nil
}

// DeleteProduct removes a product from the catalog.  Existing sales keep their
// price snapshots, so deletion is safe for bookkeeping.
func (r *ProductRepo) DeleteProduct(ctx context.Context, productID uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ProductByID retrieves a product or ErrProductNotFound.
func (r *ProductRepo) ProductByID(ctx context.Context, productID uint64) (model.Product, error) {
	return r.getWith(ctx, conn(ctx, r.db), productID)
}

func (r *ProductRepo) getWith(ctx context.Context, c dbtx, productID uint64) (model.Product, error) {
	const q = `SELECT id, name, description, price, category, stock, created_at
	           FROM products WHERE id = ?`
	var p model.Product
	var desc sql.NullString
	err := c.QueryRowContext(ctx, q, productID).Scan(
		&p.ID, &p.Name, &desc, &p.Price, &p.Category, &p.Stock, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, storageErr(err)
	}
	p.Description = desc.String
	return p, nil
}

// ListProducts returns catalog products, optionally filtered by category and
// restricted to in-stock items.  Ordered by category then name.
func (r *ProductRepo) ListProducts(ctx context.Context, category string, inStockOnly bool) ([]model.Product, error) {
	q := `SELECT id, name, description, price, category, stock, created_at FROM products WHERE 1=1`
	args := []any{}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	if inStockOnly {
		q += ` AND stock > 0`
	}
	q += ` ORDER BY category, name`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		var desc sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &desc, &p.Price, &p.Category, &p.Stock, &p.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		p.Description = desc.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return products, nil
}
