// Package assignment implements the round-robin-by-load distribution of
// incoming leads over active agents.
package assignment

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Candidate is an active agent eligible to receive a lead.
type Candidate struct {
	UserID uuid.UUID
	// ActiveCount is the number of unconverted leads currently assigned.
	ActiveCount int
	// LastAssignedAt is when the agent last received a lead, nil if never.
	LastAssignedAt *time.Time
}

// Pick selects the agent who should receive the next lead: the one with the
// fewest active leads, ties broken by the oldest last assignment. Agents who
// never received a lead sort before any that have. Returns false when no
// candidate is available.
func Pick(candidates []Candidate) (uuid.UUID, bool) {
	if len(candidates) == 0 {
		return uuid.Nil, false
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ActiveCount != ranked[j].ActiveCount {
			return ranked[i].ActiveCount < ranked[j].ActiveCount
		}
		return lastAssigned(ranked[i]).Before(lastAssigned(ranked[j]))
	})

	return ranked[0].UserID, true
}

func lastAssigned(c Candidate) time.Time {
	if c.LastAssignedAt == nil {
		return time.Time{}
	}
	return *c.LastAssignedAt
}
