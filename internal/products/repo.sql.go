package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

const productColumns = `id::text, product_id, name, type, price, purchase_price, quantity, rack, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ProductID, &p.Name, &p.Type, &p.Price, &p.PurchasePrice, &p.Quantity, &p.Rack, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, product *Product) error {
	id := uuid.New()
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, product_id, name, type, price, purchase_price, quantity, rack, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		id.String(), product.ProductID, product.Name, product.Type, product.Price, product.PurchasePrice, product.Quantity, product.Rack, now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return duplicateProductID(product.ProductID)
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	product.ID = id.String()
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *PGRepository) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("products: exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *PGRepository) Replace(ctx context.Context, id string, in ReplaceInput) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, type = $3, price = $4,
		     purchase_price = COALESCE($5::double precision, purchase_price),
		     quantity = $6, rack = $7, updated_at = $8
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, in.Name, in.Type, in.Price, in.PurchasePrice, in.Quantity, in.Rack, time.Now().UTC(),
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("products: replace: %w", err)
	}
	return p, nil
}

func (r *PGRepository) DecrementQuantity(ctx context.Context, productID string, qty int64) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE products
		 SET quantity = quantity - $2, updated_at = $3
		 WHERE product_id = $1 AND quantity >= $2
		 RETURNING `+productColumns,
		productID, qty, time.Now().UTC(),
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("products: decrement: %w", err)
	}

	exists, err := r.ExistsByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return nil, ErrInsufficientQuantity
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	return r.deleteWhere(ctx, `DELETE FROM products WHERE id = $1`, id)
}

func (r *PGRepository) DeleteByProductID(ctx context.Context, productID string) error {
	return r.deleteWhere(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
}

func (r *PGRepository) deleteWhere(ctx context.Context, query string, arg string) error {
	tag, err := r.pool.Exec(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
