package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoteNotFound = errors.New("note not found")

// FollowUpDetails is everything the worker needs to send one reminder.
type FollowUpDetails struct {
	NoteID           uuid.UUID
	NextFollowUpDate *time.Time
	Annulled         bool
	AgentName        string
	AgentEmail       string
	AgentActive      bool
	ClientName       string
	ClientPhone      string
}

// Repository reads follow-up reminder details for the worker.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FollowUpDetails loads the note together with its author and the case's
// client. The reminder goes to the agent who scheduled the follow-up.
func (r *Repository) FollowUpDetails(ctx context.Context, noteID uuid.UUID) (*FollowUpDetails, error) {
	var d FollowUpDetails
	err := r.pool.QueryRow(ctx, `
		SELECT n.id, n.next_follow_up_date, n.annulled_at IS NOT NULL,
			u.name, u.email, u.is_active,
			cl.name, cl.phone
		FROM sd_case_notes n
		JOIN sd_users u ON u.id = n.user_id
		JOIN sd_cases c ON c.id = n.case_id
		JOIN sd_clients cl ON cl.id = c.client_id
		WHERE n.id = $1
	`, noteID).Scan(
		&d.NoteID, &d.NextFollowUpDate, &d.Annulled,
		&d.AgentName, &d.AgentEmail, &d.AgentActive,
		&d.ClientName, &d.ClientPhone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &d, nil
}
