package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ExistsByUsernameOrEmail reports whether any user holds username or email.
func (r *PGRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users: exists: %w", err)
	}
	return exists, nil
}

// Create inserts the user and fills in its identifier.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	id := uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password, phone) VALUES ($1, $2, $3, $4, $5)`,
		id.String(), user.Username, user.Email, user.PasswordHash, user.Phone,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("users: insert: %w", err)
	}
	user.ID = id.String()
	return nil
}

// FindByUsername fetches a user including its password hash.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, username, email, password, phone FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return &user, nil
}

// List returns every user without the password column.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, username, email, phone FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Phone); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

var _ Repository = (*PGRepository)(nil)
