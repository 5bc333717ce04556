package echoguard

import "time"

const (
	defaultOverlapThreshold     = 0.7
	defaultMinWordLength        = 2
	defaultCooldown             = 1500 * time.Millisecond
	defaultFingerprintThreshold = 0.85
)

type GuardOption func(*Guard)

// WithOverlapThreshold overrides the share of candidate words that
// must appear in the playing text for an echo verdict.
func WithOverlapThreshold(threshold float64) GuardOption {
	return func(g *Guard) {
		g.overlapThreshold = threshold
	}
}

// WithCooldown overrides how long after playback ends candidates are
// still compared against the last segment.
func WithCooldown(cooldown time.Duration) GuardOption {
	return func(g *Guard) {
		g.cooldown = cooldown
	}
}

// WithMinWordLength overrides the length at or below which words are
// ignored by the overlap check.
func WithMinWordLength(length int) GuardOption {
	return func(g *Guard) {
		g.minWordLength = length
	}
}

// WithFingerprintThreshold overrides the envelope correlation needed
// for the acoustic check to confirm an echo.
func WithFingerprintThreshold(threshold float64) GuardOption {
	return func(g *Guard) {
		g.fingerprintThreshold = threshold
	}
}

func withClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		g.now = now
	}
}
