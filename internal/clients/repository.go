// Package clients provides the client bounded context: accounts born from
// converted leads and the conversion transaction itself.
package clients

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("client not found")
	ErrLeadNotFound     = errors.New("lead not found")
	ErrAlreadyConverted = errors.New("lead already converted")
)

// Client is a stored client row.
type Client struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     *string
	LeadID    uuid.UUID
	CreatedAt time.Time
}

// Conversion is the outcome of a lead conversion: the new client and the
// sales case opened for it.
type Conversion struct {
	Client Client
	CaseID uuid.UUID
}

// ListFilter narrows a client listing.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository provides data access for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new clients repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ConvertFromLead atomically creates the client, opens its case with an
// initial history entry and marks the lead contacted. The lead row is locked
// for the duration so concurrent conversions of the same lead cannot both
// succeed.
func (r *Repository) ConvertFromLead(ctx context.Context, leadID, actorID uuid.UUID) (Conversion, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Conversion{}, err
	}
	defer tx.Rollback(ctx)

	var (
		leadName  string
		leadPhone string
		leadEmail *string
	)
	err = tx.QueryRow(ctx, `
		SELECT name, phone, email FROM sd_leads WHERE id = $1 FOR UPDATE
	`, leadID).Scan(&leadName, &leadPhone, &leadEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversion{}, ErrLeadNotFound
	}
	if err != nil {
		return Conversion{}, err
	}

	var existing int
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM sd_clients WHERE lead_id = $1
	`, leadID).Scan(&existing); err != nil {
		return Conversion{}, err
	}
	if existing > 0 {
		return Conversion{}, ErrAlreadyConverted
	}

	var client Client
	err = tx.QueryRow(ctx, `
		INSERT INTO sd_clients (name, phone, email, lead_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, phone, email, lead_id, created_at
	`, leadName, leadPhone, leadEmail, leadID).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Email, &client.LeadID, &client.CreatedAt,
	)
	if err != nil {
		return Conversion{}, err
	}

	var caseID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO sd_cases (client_id, lead_id, status)
		VALUES ($1, $2, 'nuevo')
		RETURNING id
	`, client.ID, leadID).Scan(&caseID)
	if err != nil {
		return Conversion{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sd_status_history (case_id, previous_status, new_status, user_id)
		VALUES ($1, NULL, 'nuevo', $2)
	`, caseID, actorID); err != nil {
		return Conversion{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sd_leads SET status = 'contactado', updated_at = now() WHERE id = $1
	`, leadID); err != nil {
		return Conversion{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Conversion{}, err
	}

	return Conversion{Client: client, CaseID: caseID}, nil
}

// FindByLeadID retrieves the client created from a lead, if any.
func (r *Repository) FindByLeadID(ctx context.Context, leadID uuid.UUID) (Client, error) {
	return r.getClient(ctx, `WHERE lead_id = $1`, leadID)
}

// GetByID retrieves a client by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	return r.getClient(ctx, `WHERE id = $1`, id)
}

func (r *Repository) getClient(ctx context.Context, where string, arg any) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, lead_id, created_at
		FROM sd_clients
		`+where, arg).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.LeadID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

// List returns clients matching the filter, newest first. Search matches
// name and phone.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, email, lead_id, created_at
		FROM sd_clients
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.LeadID, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
