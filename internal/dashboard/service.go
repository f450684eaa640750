package dashboard

import (
	"context"
	"sort"
	"time"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Reporting periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Store defines the data access interface needed by the dashboard service.
type Store interface {
	Totals(ctx context.Context, from, to time.Time) (Totals, error)
	StatusBreakdown(ctx context.Context) (map[string]int, error)
	AgentProductivity(ctx context.Context, from, to time.Time) ([]AgentProductivity, error)
}

// Service assembles the management dashboard.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new dashboard service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Overview gathers the period metrics. The three queries are independent and
// run concurrently.
func (s *Service) Overview(ctx context.Context, period string) (OverviewResponse, error) {
	from, to, err := s.periodBounds(period)
	if err != nil {
		return OverviewResponse{}, err
	}

	var (
		totals    Totals
		breakdown map[string]int
		agents    []AgentProductivity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.store.Totals(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = s.store.StatusBreakdown(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		agents, err = s.store.AgentProductivity(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return OverviewResponse{}, err
	}

	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].CasesWorked > agents[j].CasesWorked
	})

	resp := OverviewResponse{
		Period:          period,
		From:            from,
		To:              to,
		Totals:          toTotalsResponse(totals),
		StatusBreakdown: breakdown,
		Agents:          make([]AgentProductivityResponse, len(agents)),
	}
	for i, a := range agents {
		resp.Agents[i] = AgentProductivityResponse{
			UserID:      a.UserID,
			UserName:    a.UserName,
			LeadsTaken:  a.LeadsTaken,
			CasesWorked: a.CasesWorked,
			Notes:       a.Notes,
			Calls:       a.Calls,
			CasesClosed: a.CasesClosed,
		}
	}
	return resp, nil
}

// periodBounds resolves a period name to [from, to). Day starts at local
// midnight, week on Monday, month on the 1st.
func (s *Service) periodBounds(period string) (time.Time, time.Time, error) {
	now := s.now()
	to := now

	switch period {
	case PeriodDay, "":
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, to, nil

	case PeriodWeek:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		offset := (int(midnight.Weekday()) + 6) % 7 // Monday = 0
		return midnight.AddDate(0, 0, -offset), to, nil

	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, to, nil
	}

	return time.Time{}, time.Time{}, apperr.Validation("period must be day, week or month")
}

// OverviewResponse is the dashboard payload.
type OverviewResponse struct {
	Period          string                      `json:"period"`
	From            time.Time                   `json:"from"`
	To              time.Time                   `json:"to"`
	Totals          TotalsResponse              `json:"totals"`
	StatusBreakdown map[string]int              `json:"statusBreakdown"`
	Agents          []AgentProductivityResponse `json:"agents"`
}

// TotalsResponse are the period-wide counters.
type TotalsResponse struct {
	LeadsCreated  int `json:"leadsCreated"`
	LeadsAssigned int `json:"leadsAssigned"`
	Conversions   int `json:"conversions"`
	CasesClosed   int `json:"casesClosed"`
	NotesCreated  int `json:"notesCreated"`
	CallsLogged   int `json:"callsLogged"`
}

// AgentProductivityResponse is one agent's activity in the period.
type AgentProductivityResponse struct {
	UserID      uuid.UUID `json:"userId"`
	UserName    string    `json:"userName"`
	LeadsTaken  int       `json:"leadsTaken"`
	CasesWorked int       `json:"casesWorked"`
	Notes       int       `json:"notes"`
	Calls       int       `json:"calls"`
	CasesClosed int       `json:"casesClosed"`
}

func toTotalsResponse(t Totals) TotalsResponse {
	return TotalsResponse{
		LeadsCreated:  t.LeadsCreated,
		LeadsAssigned: t.LeadsAssigned,
		Conversions:   t.Conversions,
		CasesClosed:   t.CasesClosed,
		NotesCreated:  t.NotesCreated,
		CallsLogged:   t.CallsLogged,
	}
}
