// Package roles defines the role vocabulary used for authorization
// decisions across modules.
package roles

const (
	// Admin has unrestricted access to every operation.
	Admin = "admin"
	// Supervisor oversees agents: manual load, note edits, annulments.
	Supervisor = "supervisor"
	// Agent (asesora) is the front-line user leads are assigned to.
	Agent = "asesora"
)

// Valid reports whether the given string is a known role.
func Valid(role string) bool {
	switch role {
	case Admin, Supervisor, Agent:
		return true
	}
	return false
}
