package dashboard

import (
	"context"
	"testing"
	"time"

	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	gotFrom time.Time
	gotTo   time.Time
	agents  []AgentProductivity
}

func (f *fakeStore) Totals(_ context.Context, from, to time.Time) (Totals, error) {
	f.gotFrom, f.gotTo = from, to
	return Totals{LeadsCreated: 7}, nil
}

func (f *fakeStore) StatusBreakdown(_ context.Context) (map[string]int, error) {
	return map[string]int{"nuevo": 3, "cerrado": 1}, nil
}

func (f *fakeStore) AgentProductivity(_ context.Context, _, _ time.Time) ([]AgentProductivity, error) {
	return f.agents, nil
}

func fixedService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestOverviewPeriodBounds(t *testing.T) {
	// Friday 2026-03-13 15:30 local time.
	now := time.Date(2026, 3, 13, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period   string
		wantFrom time.Time
	}{
		{PeriodDay, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}, // Monday
		{PeriodMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			store := &fakeStore{}
			svc := fixedService(store, now)

			resp, err := svc.Overview(context.Background(), tt.period)
			if err != nil {
				t.Fatal(err)
			}
			if !store.gotFrom.Equal(tt.wantFrom) {
				t.Fatalf("from = %s, want %s", store.gotFrom, tt.wantFrom)
			}
			if !store.gotTo.Equal(now) {
				t.Fatalf("to = %s, want %s", store.gotTo, now)
			}
			if resp.Totals.LeadsCreated != 7 {
				t.Fatalf("totals = %+v", resp.Totals)
			}
		})
	}
}

func TestOverviewRejectsUnknownPeriod(t *testing.T) {
	svc := fixedService(&fakeStore{}, time.Now())

	_, err := svc.Overview(context.Background(), "quarter")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestOverviewSortsAgentsByCasesWorked(t *testing.T) {
	store := &fakeStore{agents: []AgentProductivity{
		{UserID: uuid.New(), UserName: "low", CasesWorked: 1},
		{UserID: uuid.New(), UserName: "high", CasesWorked: 9},
	}}
	svc := fixedService(store, time.Now())

	resp, err := svc.Overview(context.Background(), PeriodDay)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Agents[0].UserName != "high" {
		t.Fatalf("agents = %+v", resp.Agents)
	}
}
