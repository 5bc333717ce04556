package events

const (
	// KindSessionPhaseChanged identifies session phase transitions.
	KindSessionPhaseChanged Kind = "session_state.phase_changed"
	// KindSessionError identifies user-facing failure notifications.
	KindSessionError Kind = "session_state.error"
)

// SessionPhaseChanged marks a session state machine transition.
type SessionPhaseChanged struct {
	Base
	From string
	To   string
}

// NewSessionPhaseChanged creates a session phase changed event.
func NewSessionPhaseChanged(from, to string) SessionPhaseChanged {
	return SessionPhaseChanged{Base: NewBase(KindSessionPhaseChanged), From: from, To: to}
}

// SessionError carries a user-facing failure notification. Category is stable
// per failure class so receivers can rate-limit to one notification each.
type SessionError struct {
	Base
	Category string
	Err      error
}

// NewSessionError creates a session error event.
func NewSessionError(category string, err error) SessionError {
	return SessionError{Base: NewBase(KindSessionError), Category: category, Err: err}
}
