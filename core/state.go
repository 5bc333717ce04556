package voicechat

import "github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"

// Phase is the conversation phase of a voice session.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseListening        Phase = "listening"
	PhaseTranscribing     Phase = "transcribing"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseSpeaking         Phase = "speaking"
	PhaseError            Phase = "error"
)

// ErrorCategory classifies a session failure by the subsystem it came from.
type ErrorCategory string

const (
	ErrorCategoryDevice        ErrorCategory = "device"
	ErrorCategoryTranscription ErrorCategory = "transcription"
	ErrorCategoryModel         ErrorCategory = "model"
	ErrorCategorySynthesis     ErrorCategory = "synthesis"
)

// SessionState is a point-in-time view of the session. Snapshots are
// value copies and stay valid after the session moves on.
type SessionState struct {
	Phase              Phase
	ActiveToken        uint64
	MicEnabled         bool
	SoundEnabled       bool
	PendingInterimText string
}

func (e *Engine) setPhase(to Phase) {
	e.stateMu.Lock()
	from := e.state.Phase
	if from == to {
		e.stateMu.Unlock()
		return
	}
	// The error phase is sticky. Turns already in flight keep running
	// to completion but cannot pull the session out of it, only
	// EndSession or Reset do.
	if from == PhaseError && to != PhaseIdle {
		e.stateMu.Unlock()
		return
	}
	e.state.Phase = to
	e.stateMu.Unlock()

	e.emit(events.NewSessionPhaseChanged(string(from), string(to)))
}

func (e *Engine) phase() Phase {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state.Phase
}

// Snapshot returns a copy of the current session state.
func (e *Engine) Snapshot() SessionState {
	if e == nil {
		return SessionState{}
	}

	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	state := e.state
	state.ActiveToken = e.tokens.Current()
	return state
}
