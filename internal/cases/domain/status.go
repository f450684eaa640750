// Package domain defines the case status vocabulary.
package domain

// Status is a case's position in the follow-up workflow.
type Status string

const (
	StatusNew          Status = "nuevo"
	StatusPendingCall  Status = "pendiente_llamada"
	StatusContacted    Status = "contactado"
	StatusNoAnswer     Status = "no_contesta"
	StatusFollowUp     Status = "seguimiento"
	StatusClosed       Status = "cerrado"
)

// All returns every known status, in workflow order.
func All() []Status {
	return []Status{
		StatusNew,
		StatusPendingCall,
		StatusContacted,
		StatusNoAnswer,
		StatusFollowUp,
		StatusClosed,
	}
}

// Valid reports whether the given string is a known status.
func Valid(s string) bool {
	switch Status(s) {
	case StatusNew, StatusPendingCall, StatusContacted, StatusNoAnswer, StatusFollowUp, StatusClosed:
		return true
	}
	return false
}

// IsClosed reports whether the status is terminal for day-to-day work.
// Closed cases can still be reopened by an explicit status change.
func (s Status) IsClosed() bool {
	return s == StatusClosed
}
