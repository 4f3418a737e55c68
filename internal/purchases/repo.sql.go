package purchases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository using PostgreSQL JSONB columns.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, purchase *Purchase) error {
	customer, err := json.Marshal(purchase.Customer)
	if err != nil {
		return fmt.Errorf("purchases: encode customer: %w", err)
	}
	products, err := json.Marshal(purchase.Products)
	if err != nil {
		return fmt.Errorf("purchases: encode products: %w", err)
	}
	id := uuid.New()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO purchases (id, customer, products, total, date) VALUES ($1, $2, $3, $4, $5)`,
		id.String(), customer, products, purchase.Total, purchase.Date,
	)
	if err != nil {
		return fmt.Errorf("purchases: insert: %w", err)
	}
	purchase.ID = id.String()
	return nil
}

func (r *PGRepository) List(ctx context.Context) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, customer, products, total, date FROM purchases ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("purchases: list: %w", err)
	}
	defer rows.Close()

	purchases := []Purchase{}
	for rows.Next() {
		var (
			p                  Purchase
			customer, products []byte
		)
		if err := rows.Scan(&p.ID, &customer, &products, &p.Total, &p.Date); err != nil {
			return nil, fmt.Errorf("purchases: scan: %w", err)
		}
		if err := json.Unmarshal(customer, &p.Customer); err != nil {
			return nil, fmt.Errorf("purchases: decode customer: %w", err)
		}
		if err := json.Unmarshal(products, &p.Products); err != nil {
			return nil, fmt.Errorf("purchases: decode products: %w", err)
		}
		p.Date = p.Date.UTC()
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("purchases: rows: %w", err)
	}
	return purchases, nil
}

var _ Repository = (*PGRepository)(nil)
