// Package users provides the account management bounded context.
// Only admins may create, edit or deactivate accounts.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// User is a stored account row.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams carries the fields for a new account.
type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// UpdateParams carries the optional fields for an account update.
// Nil fields are left unchanged.
type UpdateParams struct {
	Name         *string
	Role         *string
	PasswordHash *string
}

// ListFilter narrows an account listing.
type ListFilter struct {
	Role       string
	OnlyActive bool
}

// Repository provides data access for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, params CreateParams) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sd_users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash, params.Role,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return User{}, ErrEmailTaken
	}
	return u, err
}

// GetByID retrieves an account by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM sd_users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List returns accounts matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM sd_users
		WHERE ($1 = '' OR role = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY created_at DESC
	`, filter.Role, filter.OnlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies the non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		UPDATE sd_users SET
			name = COALESCE($2, name),
			role = COALESCE($3, role),
			password_hash = COALESCE($4, password_hash),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, params.Name, params.Role, params.PasswordHash,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// SetActive flips the account's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		UPDATE sd_users SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, active,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
