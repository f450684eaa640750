// Package audit provides the audit trail bounded context.
// Every security-relevant mutation in the system is recorded here with the
// acting user, the affected entity and a JSON detail payload.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audited actions. Entities reuse their table-free names (lead, client,
// case, case_note, call_log, user).
const (
	ActionCreate       = "CREATE"
	ActionConvertLead  = "CONVERT_LEAD"
	ActionUpdateStatus = "UPDATE_STATUS"
	ActionCreateNote   = "CREATE_NOTE"
	ActionUpdateNote   = "UPDATE_NOTE"
	ActionAnnulNote    = "ANNUL_NOTE"
	ActionLogin        = "LOGIN"
	ActionActivate     = "ACTIVATE"
	ActionDeactivate   = "DEACTIVATE"
)

// Entry is a stored audit log row.
type Entry struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Action    string
	Entity    string
	EntityID  string
	Details   []byte
	CreatedAt time.Time
}

// ListFilter narrows an audit log listing. Zero values mean "no filter".
type ListFilter struct {
	Entity string
	Action string
	UserID *uuid.UUID
	Limit  int
}

// Repository provides data access for audit log entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a single audit entry.
func (r *Repository) Insert(ctx context.Context, userID *uuid.UUID, action, entity, entityID string, details []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sd_audit_logs (user_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, action, entity, entityID, details)
	return err
}

// List returns audit entries, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, action, entity, entity_id, details, created_at
		FROM sd_audit_logs
		WHERE ($1 = '' OR entity = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3::uuid IS NULL OR user_id = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, filter.Entity, filter.Action, filter.UserID, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var entityID *string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &entityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if entityID != nil {
			e.EntityID = *entityID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
