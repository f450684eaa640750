package domain

import "testing"

func TestValid(t *testing.T) {
	for _, s := range All() {
		if !Valid(string(s)) {
			t.Fatalf("%s should be valid", s)
		}
	}

	for _, s := range []string{"", "NUEVO", "archivado", "closed"} {
		if Valid(s) {
			t.Fatalf("%q should be invalid", s)
		}
	}
}

func TestIsClosed(t *testing.T) {
	if !StatusClosed.IsClosed() {
		t.Fatal("cerrado must report closed")
	}
	if StatusFollowUp.IsClosed() {
		t.Fatal("seguimiento must not report closed")
	}
}
