package voicechat

import (
	"fmt"
	"sync"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

// turnLog is the append-only conversation history of a session.
type turnLog struct {
	mu    sync.Mutex
	turns []llms.Turn
}

func (l *turnLog) append(role llms.TurnRole, content string, interrupted bool, startedAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, llms.Turn{
		Role:        role,
		Content:     content,
		Interrupted: interrupted,
		StartedAt:   startedAt,
		EndedAt:     time.Now(),
	})
}

// lastAssistant returns the most recent assistant turn, if any.
func (l *turnLog) lastAssistant() (llms.Turn, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == llms.TurnRoleAssistant {
			return l.turns[i], true
		}
	}
	return llms.Turn{}, false
}

func (l *turnLog) snapshot() []llms.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	turns := make([]llms.Turn, len(l.turns))
	copy(turns, l.turns)
	return turns
}

func (l *turnLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// bridgedPrompt rephrases an utterance that interrupted the assistant
// mid-sentence so the model responds with the cut-off reply in mind.
func bridgedPrompt(interrupted llms.Turn, utterance string) string {
	return fmt.Sprintf(
		"Ты не успел договорить свой ответ: «%s». Ученик перебил тебя и сказал: «%s». Отреагируй на слова ученика, учитывая свой прерванный ответ.",
		interrupted.Content, utterance,
	)
}
