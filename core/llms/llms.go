// Package llms defines the language model contract the conversation
// engine prompts against, independent of the provider wired in.
package llms

import "time"

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one entry of the conversation log handed to the model as
// context. Interrupted marks assistant turns the user cut off before
// playback finished.
type Turn struct {
	Role        TurnRole
	Content     string
	Interrupted bool

	StartedAt time.Time
	EndedAt   time.Time
}
