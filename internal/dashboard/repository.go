// Package dashboard provides management metrics over a reporting period.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Totals are the period-wide activity counters.
type Totals struct {
	LeadsCreated  int
	LeadsAssigned int
	Conversions   int
	CasesClosed   int
	NotesCreated  int
	CallsLogged   int
}

// AgentProductivity is one agent's activity in the period.
type AgentProductivity struct {
	UserID      uuid.UUID
	UserName    string
	LeadsTaken  int
	CasesWorked int
	Notes       int
	Calls       int
	CasesClosed int
}

// Repository provides the dashboard queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Totals returns the period-wide counters in one round trip.
func (r *Repository) Totals(ctx context.Context, from, to time.Time) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sd_leads WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM sd_leads WHERE assigned_at >= $1 AND assigned_at < $2),
			(SELECT COUNT(*) FROM sd_clients WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM sd_status_history WHERE new_status = 'cerrado' AND created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM sd_case_notes WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM sd_call_logs WHERE created_at >= $1 AND created_at < $2)
	`, from, to).Scan(
		&t.LeadsCreated, &t.LeadsAssigned, &t.Conversions, &t.CasesClosed, &t.NotesCreated, &t.CallsLogged,
	)
	return t, err
}

// StatusBreakdown returns the current case population per status.
func (r *Repository) StatusBreakdown(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM sd_cases GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		breakdown[status] = count
	}
	return breakdown, rows.Err()
}

// AgentProductivity returns per-agent activity in the period, most worked
// cases first.
func (r *Repository) AgentProductivity(ctx context.Context, from, to time.Time) ([]AgentProductivity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name,
			(SELECT COUNT(*) FROM sd_leads l
				WHERE l.assigned_user_id = u.id AND l.assigned_at >= $1 AND l.assigned_at < $2),
			(SELECT COUNT(DISTINCT activity.case_id) FROM (
				SELECT case_id, user_id, created_at FROM sd_case_notes
				UNION ALL
				SELECT case_id, user_id, created_at FROM sd_call_logs
			) activity
				WHERE activity.user_id = u.id AND activity.created_at >= $1 AND activity.created_at < $2),
			(SELECT COUNT(*) FROM sd_case_notes n
				WHERE n.user_id = u.id AND n.created_at >= $1 AND n.created_at < $2),
			(SELECT COUNT(*) FROM sd_call_logs cl
				WHERE cl.user_id = u.id AND cl.created_at >= $1 AND cl.created_at < $2),
			(SELECT COUNT(*) FROM sd_status_history h
				WHERE h.user_id = u.id AND h.new_status = 'cerrado' AND h.created_at >= $1 AND h.created_at < $2)
		FROM sd_users u
		WHERE u.role = 'asesora' AND u.is_active
		ORDER BY 4 DESC, u.name ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []AgentProductivity
	for rows.Next() {
		var a AgentProductivity
		if err := rows.Scan(&a.UserID, &a.UserName, &a.LeadsTaken, &a.CasesWorked, &a.Notes, &a.Calls, &a.CasesClosed); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
