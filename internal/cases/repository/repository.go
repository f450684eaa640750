// Package repository provides data access for the cases bounded context.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("case not found")

// Case is a stored case row, joined with its client.
type Case struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	ClientName     string
	ClientPhone    string
	LeadID         uuid.UUID
	AssignedUserID *uuid.UUID
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HistoryEntry is one recorded status transition.
type HistoryEntry struct {
	ID             uuid.UUID
	CaseID         uuid.UUID
	PreviousStatus *string
	NewStatus      string
	UserID         uuid.UUID
	UserName       string
	CreatedAt      time.Time
}

// CallLog is one recorded phone contact on a case.
type CallLog struct {
	ID              uuid.UUID
	CaseID          uuid.UUID
	UserID          uuid.UUID
	UserName        string
	CallDate        time.Time
	DurationSeconds int
	Result          string
	Observations    *string
	CreatedAt       time.Time
}

// CreateCallParams carries the fields for a new call log.
type CreateCallParams struct {
	CaseID          uuid.UUID
	UserID          uuid.UUID
	CallDate        time.Time
	DurationSeconds int
	Result          string
	Observations    *string
}

// ListFilter narrows a case listing. A non-nil AssignedUserID restricts the
// listing to cases whose originating lead is assigned to that agent.
type ListFilter struct {
	AssignedUserID *uuid.UUID
	Status         string
	Limit          int
	Offset         int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const caseColumns = `
	c.id, c.client_id, cl.name, cl.phone, c.lead_id, l.assigned_user_id,
	c.status, c.created_at, c.updated_at`

const caseJoins = `
	FROM sd_cases c
	JOIN sd_clients cl ON cl.id = c.client_id
	JOIN sd_leads l ON l.id = c.lead_id`

func scanCase(row pgx.Row) (Case, error) {
	var cs Case
	err := row.Scan(
		&cs.ID, &cs.ClientID, &cs.ClientName, &cs.ClientPhone, &cs.LeadID, &cs.AssignedUserID,
		&cs.Status, &cs.CreatedAt, &cs.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	return cs, err
}

// GetByID retrieves a case with its client and assignment info.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `SELECT`+caseColumns+caseJoins+` WHERE c.id = $1`, id))
}

// List returns cases matching the filter, most recently worked first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Case, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+caseColumns+caseJoins+`
		WHERE ($1::uuid IS NULL OR l.assigned_user_id = $1)
		  AND ($2 = '' OR c.status = $2)
		ORDER BY c.updated_at DESC
		LIMIT $3 OFFSET $4
	`, filter.AssignedUserID, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs)
	}
	return cases, rows.Err()
}

// UpdateStatusWithHistory atomically sets the case status and appends the
// transition to the history. The case row is locked so concurrent transitions
// serialize. Returns the status the case had before the update.
func (r *Repository) UpdateStatusWithHistory(ctx context.Context, caseID uuid.UUID, newStatus string, actorID uuid.UUID) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var previous string
	err = tx.QueryRow(ctx, `
		SELECT status FROM sd_cases WHERE id = $1 FOR UPDATE
	`, caseID).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sd_cases SET status = $2, updated_at = now() WHERE id = $1
	`, caseID, newStatus); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sd_status_history (case_id, previous_status, new_status, user_id)
		VALUES ($1, $2, $3, $4)
	`, caseID, previous, newStatus, actorID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return previous, nil
}

// Touch bumps the case's updated_at so any recorded activity surfaces it at
// the top of worked-case listings.
func (r *Repository) Touch(ctx context.Context, caseID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sd_cases SET updated_at = now() WHERE id = $1
	`, caseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns a case's status transitions, oldest first.
func (r *Repository) History(ctx context.Context, caseID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.id, h.case_id, h.previous_status, h.new_status, h.user_id, u.name, h.created_at
		FROM sd_status_history h
		JOIN sd_users u ON u.id = h.user_id
		WHERE h.case_id = $1
		ORDER BY h.created_at ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.PreviousStatus, &e.NewStatus, &e.UserID, &e.UserName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateCall records a phone contact and bumps the case's updated_at.
func (r *Repository) CreateCall(ctx context.Context, params CreateCallParams) (CallLog, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CallLog{}, err
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO sd_call_logs (case_id, user_id, call_date, duration_seconds, result, observations)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, params.CaseID, params.UserID, params.CallDate, params.DurationSeconds, params.Result, params.Observations).Scan(&id)
	if err != nil {
		return CallLog{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE sd_cases SET updated_at = now() WHERE id = $1
	`, params.CaseID); err != nil {
		return CallLog{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CallLog{}, err
	}

	var call CallLog
	err = r.pool.QueryRow(ctx, `
		SELECT cl.id, cl.case_id, cl.user_id, u.name, cl.call_date, cl.duration_seconds, cl.result, cl.observations, cl.created_at
		FROM sd_call_logs cl
		JOIN sd_users u ON u.id = cl.user_id
		WHERE cl.id = $1
	`, id).Scan(
		&call.ID, &call.CaseID, &call.UserID, &call.UserName, &call.CallDate,
		&call.DurationSeconds, &call.Result, &call.Observations, &call.CreatedAt,
	)
	return call, err
}

// ListCalls returns a case's call logs, newest first.
func (r *Repository) ListCalls(ctx context.Context, caseID uuid.UUID) ([]CallLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cl.id, cl.case_id, cl.user_id, u.name, cl.call_date, cl.duration_seconds, cl.result, cl.observations, cl.created_at
		FROM sd_call_logs cl
		JOIN sd_users u ON u.id = cl.user_id
		WHERE cl.case_id = $1
		ORDER BY cl.call_date DESC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []CallLog
	for rows.Next() {
		var call CallLog
		if err := rows.Scan(
			&call.ID, &call.CaseID, &call.UserID, &call.UserName, &call.CallDate,
			&call.DurationSeconds, &call.Result, &call.Observations, &call.CreatedAt,
		); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}
