package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPickEmpty(t *testing.T) {
	if _, ok := Pick(nil); ok {
		t.Fatal("expected no pick from empty candidates")
	}
}

func TestPickPrefersLowestLoad(t *testing.T) {
	busy := Candidate{UserID: uuid.New(), ActiveCount: 5}
	idle := Candidate{UserID: uuid.New(), ActiveCount: 1}

	got, ok := Pick([]Candidate{busy, idle})
	if !ok || got != idle.UserID {
		t.Fatalf("picked %s, want %s", got, idle.UserID)
	}
}

func TestPickBreaksTiesByOldestAssignment(t *testing.T) {
	earlier := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	recent := Candidate{UserID: uuid.New(), ActiveCount: 2, LastAssignedAt: &later}
	stale := Candidate{UserID: uuid.New(), ActiveCount: 2, LastAssignedAt: &earlier}

	got, ok := Pick([]Candidate{recent, stale})
	if !ok || got != stale.UserID {
		t.Fatalf("picked %s, want %s", got, stale.UserID)
	}
}

func TestPickNeverAssignedWinsTie(t *testing.T) {
	when := time.Now()
	seasoned := Candidate{UserID: uuid.New(), ActiveCount: 0, LastAssignedAt: &when}
	fresh := Candidate{UserID: uuid.New(), ActiveCount: 0}

	got, ok := Pick([]Candidate{seasoned, fresh})
	if !ok || got != fresh.UserID {
		t.Fatalf("picked %s, want %s", got, fresh.UserID)
	}
}

func TestPickSpreadsSequentialAssignments(t *testing.T) {
	// Simulate three agents receiving three leads in a row: each assignment
	// bumps the winner's load, so all three agents end up with one lead each.
	agents := []Candidate{
		{UserID: uuid.New()},
		{UserID: uuid.New()},
		{UserID: uuid.New()},
	}

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 3; i++ {
		winner, ok := Pick(agents)
		if !ok {
			t.Fatal("no pick")
		}
		if seen[winner] {
			t.Fatalf("agent %s assigned twice", winner)
		}
		seen[winner] = true

		now := time.Now()
		for j := range agents {
			if agents[j].UserID == winner {
				agents[j].ActiveCount++
				agents[j].LastAssignedAt = &now
			}
		}
	}
}

func TestPickDoesNotMutateInput(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	candidates := []Candidate{
		{UserID: first, ActiveCount: 9},
		{UserID: second, ActiveCount: 1},
	}

	if _, ok := Pick(candidates); !ok {
		t.Fatal("no pick")
	}
	if candidates[0].UserID != first || candidates[1].UserID != second {
		t.Fatal("input slice reordered")
	}
}
