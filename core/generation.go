package voicechat

import "sync/atomic"

// generationTokens hands out monotonically increasing tokens that tie
// in-flight work to the turn that started it. Advancing the token
// invalidates everything issued before it.
type generationTokens struct {
	current atomic.Uint64
}

func (t *generationTokens) Current() uint64 {
	return t.current.Load()
}

func (t *generationTokens) Advance() uint64 {
	return t.current.Add(1)
}

func (t *generationTokens) IsCurrent(token uint64) bool {
	return t.current.Load() == token
}
