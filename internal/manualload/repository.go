// Package manualload provides bulk intake of pre-qualified prospects.
// Unlike campaign intake, a manually loaded prospect is already a client:
// lead, client, case and the initial history entry are created together.
package manualload

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateParams carries the fields for one pre-qualified prospect.
type CreateParams struct {
	Name           string
	Phone          string
	Email          *string
	ExternalID     *string
	SourceID       *uuid.UUID
	AssignedUserID *uuid.UUID
	AssignedAt     *time.Time
	Observations   *string
	ActorID        uuid.UUID
}

// Created identifies the rows a manual load produced.
type Created struct {
	LeadID   uuid.UUID
	ClientID uuid.UUID
	CaseID   uuid.UUID
}

// Repository provides the manual load transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new manual load repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateQualified inserts lead, client, case and initial history entry in a
// single transaction. The lead lands already contacted since the prospect is
// pre-qualified.
func (r *Repository) CreateQualified(ctx context.Context, params CreateParams) (Created, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Created{}, err
	}
	defer tx.Rollback(ctx)

	var out Created
	err = tx.QueryRow(ctx, `
		INSERT INTO sd_leads (
			name, phone, email, external_id, source_id,
			status, assigned_user_id, assigned_at, created_manually, observations
		) VALUES ($1, $2, $3, $4, $5, 'contactado', $6, $7, true, $8)
		RETURNING id
	`,
		params.Name, params.Phone, params.Email, params.ExternalID, params.SourceID,
		params.AssignedUserID, params.AssignedAt, params.Observations,
	).Scan(&out.LeadID)
	if err != nil {
		return Created{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO sd_clients (name, phone, email, lead_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, params.Name, params.Phone, params.Email, out.LeadID).Scan(&out.ClientID)
	if err != nil {
		return Created{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO sd_cases (client_id, lead_id, status)
		VALUES ($1, $2, 'nuevo')
		RETURNING id
	`, out.ClientID, out.LeadID).Scan(&out.CaseID)
	if err != nil {
		return Created{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sd_status_history (case_id, previous_status, new_status, user_id)
		VALUES ($1, NULL, 'nuevo', $2)
	`, out.CaseID, params.ActorID); err != nil {
		return Created{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Created{}, err
	}
	return out, nil
}
