package casenotes

import (
	"time"

	"salesdesk_backend/internal/shared/roles"
	"salesdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// agentEditWindow is how long an agent may edit their own note after writing it.
const agentEditWindow = 10 * time.Minute

// CanEdit decides whether the actor may edit the note. Admins edit anything,
// supervisors edit anything not written by an admin, agents edit only their
// own notes and only within the edit window.
func CanEdit(actorRole string, actorID uuid.UUID, note Note, now time.Time) error {
	switch actorRole {
	case roles.Admin:
		return nil

	case roles.Supervisor:
		if note.Role == roles.Admin {
			return apperr.Forbidden("supervisors cannot edit admin notes")
		}
		return nil

	case roles.Agent:
		if note.UserID != actorID {
			return apperr.Forbidden("agents can only edit their own notes")
		}
		if now.Sub(note.CreatedAt) > agentEditWindow {
			return apperr.Forbidden("edit window has expired")
		}
		return nil
	}

	return apperr.Forbidden("role cannot edit notes")
}

// CanAnnul decides whether the actor may annul the note. Admins annul
// anything, supervisors only agent-authored notes, agents never annul.
func CanAnnul(actorRole string, note Note) error {
	switch actorRole {
	case roles.Admin:
		return nil

	case roles.Supervisor:
		if note.Role != roles.Agent {
			return apperr.Forbidden("supervisors can only annul agent notes")
		}
		return nil
	}

	return apperr.Forbidden("role cannot annul notes")
}
