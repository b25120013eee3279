package domain

// SessionState describes where the session manager is in its lifecycle.
// Unresolved is the initial state before the first session check completes.
type SessionState string

const (
	SessionUnresolved    SessionState = "unresolved"
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
)

// Session is the authenticated-identity state of one application instance.
// UserID, Email, Name and Role are only meaningful when State is
// SessionAuthenticated.
type Session struct {
	State  SessionState `json:"state"`
	UserID string       `json:"user_id,omitempty"`
	Email  string       `json:"email,omitempty"`
	Name   string       `json:"name,omitempty"`
	Role   Role         `json:"role,omitempty"`
}

// Authenticated reports whether the session carries a usable identity.
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.UserID != ""
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}
