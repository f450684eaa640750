package casenotes

import (
	"testing"
	"time"

	"salesdesk_backend/internal/shared/roles"

	"github.com/google/uuid"
)

func TestCanEdit(t *testing.T) {
	author := uuid.New()
	createdAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	note := func(role string) Note {
		return Note{UserID: author, Role: role, CreatedAt: createdAt}
	}

	tests := []struct {
		name      string
		actorRole string
		actorID   uuid.UUID
		note      Note
		now       time.Time
		wantErr   bool
	}{
		{"admin edits anything", roles.Admin, uuid.New(), note(roles.Agent), createdAt.Add(48 * time.Hour), false},
		{"admin edits admin notes", roles.Admin, uuid.New(), note(roles.Admin), createdAt, false},
		{"supervisor edits agent note", roles.Supervisor, uuid.New(), note(roles.Agent), createdAt.Add(48 * time.Hour), false},
		{"supervisor edits supervisor note", roles.Supervisor, uuid.New(), note(roles.Supervisor), createdAt, false},
		{"supervisor blocked on admin note", roles.Supervisor, uuid.New(), note(roles.Admin), createdAt, true},
		{"agent edits own note inside window", roles.Agent, author, note(roles.Agent), createdAt.Add(5 * time.Minute), false},
		{"agent blocked on foreign note", roles.Agent, uuid.New(), note(roles.Agent), createdAt, true},
		{"agent just inside window", roles.Agent, author, note(roles.Agent), createdAt.Add(10*time.Minute - time.Millisecond), false},
		{"agent at window boundary", roles.Agent, author, note(roles.Agent), createdAt.Add(10 * time.Minute), false},
		{"agent just past window", roles.Agent, author, note(roles.Agent), createdAt.Add(10*time.Minute + time.Millisecond), true},
		{"unknown role blocked", "auditor", author, note(roles.Agent), createdAt, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanEdit(tt.actorRole, tt.actorID, tt.note, tt.now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanAnnul(t *testing.T) {
	tests := []struct {
		name       string
		actorRole  string
		authorRole string
		wantErr    bool
	}{
		{"admin annuls agent note", roles.Admin, roles.Agent, false},
		{"admin annuls admin note", roles.Admin, roles.Admin, false},
		{"supervisor annuls agent note", roles.Supervisor, roles.Agent, false},
		{"supervisor blocked on supervisor note", roles.Supervisor, roles.Supervisor, true},
		{"supervisor blocked on admin note", roles.Supervisor, roles.Admin, true},
		{"agent never annuls", roles.Agent, roles.Agent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAnnul(tt.actorRole, Note{Role: tt.authorRole})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
