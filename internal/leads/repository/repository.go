// Package repository provides data access for the leads bounded context.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// Lead is a stored lead row, joined with its source and assignee names.
type Lead struct {
	ID               uuid.UUID
	Name             string
	Phone            string
	Email            *string
	ExternalID       *string
	SourceID         *uuid.UUID
	SourceName       *string
	Status           string
	AssignedUserID   *uuid.UUID
	AssignedUserName *string
	AssignedAt       *time.Time
	CreatedManually  bool
	Observations     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Source is a lead acquisition channel.
type Source struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
}

// CreateLeadParams carries the fields for a new lead.
type CreateLeadParams struct {
	Name            string
	Phone           string
	Email           *string
	ExternalID      *string
	SourceID        *uuid.UUID
	AssignedUserID  *uuid.UUID
	AssignedAt      *time.Time
	CreatedManually bool
	Observations    *string
}

// ListFilter narrows a lead listing. A non-nil AssignedUserID restricts the
// listing to that agent's leads.
type ListFilter struct {
	AssignedUserID *uuid.UUID
	Status         string
	Limit          int
	Offset         int
}

// CandidateRow is an agent's current load for assignment ranking.
type CandidateRow struct {
	UserID         uuid.UUID
	ActiveCount    int
	LastAssignedAt *time.Time
}

// AgentLoad is a per-agent slice of the lead distribution overview.
type AgentLoad struct {
	UserID      uuid.UUID
	UserName    string
	TotalLeads  int
	ActiveLeads int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	l.id, l.name, l.phone, l.email, l.external_id, l.source_id, s.name,
	l.status, l.assigned_user_id, u.name, l.assigned_at,
	l.created_manually, l.observations, l.created_at, l.updated_at`

const leadJoins = `
	FROM sd_leads l
	LEFT JOIN sd_lead_sources s ON s.id = l.source_id
	LEFT JOIN sd_users u ON u.id = l.assigned_user_id`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.ExternalID, &lead.SourceID, &lead.SourceName,
		&lead.Status, &lead.AssignedUserID, &lead.AssignedUserName, &lead.AssignedAt,
		&lead.CreatedManually, &lead.Observations, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Create inserts a new lead with status 'nuevo'.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sd_leads (
			name, phone, email, external_id, source_id,
			assigned_user_id, assigned_at, created_manually, observations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		params.Name, params.Phone, params.Email, params.ExternalID, params.SourceID,
		params.AssignedUserID, params.AssignedAt, params.CreatedManually, params.Observations,
	).Scan(&id)
	if err != nil {
		return Lead{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a lead with its source and assignee names.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT`+leadColumns+leadJoins+` WHERE l.id = $1`, id))
}

// FindByExternalID retrieves a lead by its upstream identifier.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT`+leadColumns+leadJoins+` WHERE l.external_id = $1`, externalID))
}

// FindByPhone retrieves a lead by its normalized phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT`+leadColumns+leadJoins+` WHERE l.phone = $1`, phone))
}

// List returns leads matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+leadColumns+leadJoins+`
		WHERE ($1::uuid IS NULL OR l.assigned_user_id = $1)
		  AND ($2 = '' OR l.status = $2)
		ORDER BY l.created_at DESC
		LIMIT $3 OFFSET $4
	`, filter.AssignedUserID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// UpsertSource finds or creates a source by name.
func (r *Repository) UpsertSource(ctx context.Context, name string) (Source, error) {
	var src Source
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sd_lead_sources (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, description, created_at
	`, name).Scan(&src.ID, &src.Name, &src.Description, &src.CreatedAt)
	return src, err
}

// ListSources returns all known sources.
func (r *Repository) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM sd_lead_sources
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Name, &src.Description, &src.CreatedAt); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// AssignmentCandidates returns every active agent with their open lead count
// (anything not cerrado) and the time of their most recent assignment.
// Ranking happens in the assignment package.
func (r *Repository) AssignmentCandidates(ctx context.Context) ([]CandidateRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id,
		       COUNT(l.id) FILTER (WHERE l.status <> 'cerrado') AS active_count,
		       MAX(l.assigned_at) AS last_assigned_at
		FROM sd_users u
		LEFT JOIN sd_leads l ON l.assigned_user_id = u.id
		WHERE u.role = 'asesora' AND u.is_active
		GROUP BY u.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []CandidateRow
	for rows.Next() {
		var c CandidateRow
		if err := rows.Scan(&c.UserID, &c.ActiveCount, &c.LastAssignedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Distribution returns per-agent lead counts for the workload overview.
func (r *Repository) Distribution(ctx context.Context) ([]AgentLoad, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name,
		       COUNT(l.id) AS total_leads,
		       COUNT(l.id) FILTER (WHERE l.status <> 'cerrado') AS active_leads
		FROM sd_users u
		LEFT JOIN sd_leads l ON l.assigned_user_id = u.id
		WHERE u.role = 'asesora' AND u.is_active
		GROUP BY u.id, u.name
		ORDER BY u.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []AgentLoad
	for rows.Next() {
		var load AgentLoad
		if err := rows.Scan(&load.UserID, &load.UserName, &load.TotalLeads, &load.ActiveLeads); err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	return loads, rows.Err()
}
