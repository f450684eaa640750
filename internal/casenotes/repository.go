// Package casenotes provides the case management-note bounded context:
// typed notes with role snapshots, an edit window for agents and a
// supervised annulment flow.
package casenotes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("note not found")

// Management types with workflow side effects. Other types are plain records.
const (
	TypeCall       = "llamada"
	TypeFollowUp   = "seguimiento"
	TypeReschedule = "reagendar"
	TypeNoAnswer   = "no_contesta"
	TypeCloseCase  = "cierre_de_caso"
)

// ValidManagementTypes defines the allowed note types.
var ValidManagementTypes = map[string]bool{
	TypeCall:       true,
	TypeFollowUp:   true,
	TypeReschedule: true,
	TypeNoAnswer:   true,
	TypeCloseCase:  true,
}

// Note is a stored management note. Role and StatusSnapshot are frozen at
// creation time: they record who the author was and where the case stood,
// regardless of later role changes or case transitions.
type Note struct {
	ID               uuid.UUID
	CaseID           uuid.UUID
	UserID           uuid.UUID
	UserName         string
	Role             string
	ManagementType   string
	Content          string
	StatusSnapshot   string
	NextFollowUpDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	AnnulledAt       *time.Time
}

// CreateParams carries the fields for a new note.
type CreateParams struct {
	CaseID           uuid.UUID
	UserID           uuid.UUID
	Role             string
	ManagementType   string
	Content          string
	StatusSnapshot   string
	NextFollowUpDate *time.Time
}

// UpdateParams carries the optional fields for a note edit. Nil fields are
// left unchanged; the follow-up date only changes when SetFollowUpDate is
// true, so a nil date can clear the column.
type UpdateParams struct {
	ManagementType   *string
	Content          *string
	NextFollowUpDate *time.Time
	SetFollowUpDate  bool
}

// Repository provides data access for case notes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new case notes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const noteColumns = `
	n.id, n.case_id, n.user_id, u.name, n.role, n.management_type, n.content,
	n.status_snapshot, n.next_follow_up_date, n.created_at, n.updated_at, n.annulled_at`

const noteJoins = `
	FROM sd_case_notes n
	JOIN sd_users u ON u.id = n.user_id`

func scanNote(row pgx.Row) (Note, error) {
	var n Note
	err := row.Scan(
		&n.ID, &n.CaseID, &n.UserID, &n.UserName, &n.Role, &n.ManagementType, &n.Content,
		&n.StatusSnapshot, &n.NextFollowUpDate, &n.CreatedAt, &n.UpdatedAt, &n.AnnulledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

// Create inserts a new note.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Note, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sd_case_notes (
			case_id, user_id, role, management_type, content, status_snapshot, next_follow_up_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		params.CaseID, params.UserID, params.Role, params.ManagementType,
		params.Content, params.StatusSnapshot, params.NextFollowUpDate,
	).Scan(&id)
	if err != nil {
		return Note{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a note with its author's name.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Note, error) {
	return scanNote(r.pool.QueryRow(ctx, `SELECT`+noteColumns+noteJoins+` WHERE n.id = $1`, id))
}

// ListByCase returns a case's notes, newest first. Annulled notes are
// included so the record stays complete.
func (r *Repository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+noteColumns+noteJoins+`
		WHERE n.case_id = $1
		ORDER BY n.created_at DESC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update applies the supplied fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Note, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sd_case_notes SET
			management_type = COALESCE($2, management_type),
			content = COALESCE($3, content),
			next_follow_up_date = CASE WHEN $5 THEN $4 ELSE next_follow_up_date END,
			updated_at = now()
		WHERE id = $1
	`, id, params.ManagementType, params.Content, params.NextFollowUpDate, params.SetFollowUpDate)
	if err != nil {
		return Note{}, err
	}
	if tag.RowsAffected() == 0 {
		return Note{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Annul marks a note annulled. Annulment is terminal.
func (r *Repository) Annul(ctx context.Context, id uuid.UUID) (Note, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sd_case_notes SET annulled_at = now(), updated_at = now()
		WHERE id = $1 AND annulled_at IS NULL
	`, id)
	if err != nil {
		return Note{}, err
	}
	if tag.RowsAffected() == 0 {
		return Note{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
