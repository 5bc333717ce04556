// Package echoguard tells the assistant's own voice apart from genuine
// user speech. When the microphone picks up played-back assistant
// audio, recognizers transcribe it back almost verbatim; the guard
// compares every candidate utterance captured during (or right after)
// playback against the text being played.
package echoguard

import (
	"math"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Classification is the verdict for one candidate utterance.
type Classification struct {
	IsEcho     bool
	Confidence float64
}

// Guard keeps track of the currently or most recently played assistant
// segment and classifies candidate utterances against it. Safe for
// concurrent use.
type Guard struct {
	overlapThreshold     float64
	minWordLength        int
	cooldown             time.Duration
	fingerprintThreshold float64

	now func() time.Time

	mu          sync.Mutex
	playingText string
	fingerprint []float64
	playing     bool
	lastEndedAt time.Time
}

// NewGuard creates a guard with the default thresholds, tunable
// through options.
func NewGuard(opts ...GuardOption) *Guard {
	guard := &Guard{
		overlapThreshold:     defaultOverlapThreshold,
		minWordLength:        defaultMinWordLength,
		cooldown:             defaultCooldown,
		fingerprintThreshold: defaultFingerprintThreshold,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(guard)
	}
	return guard
}

// SegmentStarted records the text (and optional loudness fingerprint)
// of the segment that just started playing.
func (g *Guard) SegmentStarted(sourceText string, fingerprint []float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playingText = sourceText
	g.fingerprint = fingerprint
	g.playing = true
}

// SegmentEnded marks the end of playback. The last segment stays
// comparable for the cooldown window, covering recognizer latency.
func (g *Guard) SegmentEnded() {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playing = false
	g.lastEndedAt = g.now()
}

// Classify compares a candidate utterance against the reference
// segment. Candidates arriving with no playback in progress and
// outside the cooldown window are never echo.
func (g *Guard) Classify(candidateText string, candidateEnvelope []float64) Classification {
	if g == nil {
		return Classification{}
	}
	g.mu.Lock()
	reference := g.playingText
	referenceFingerprint := g.fingerprint
	comparable := g.playing || (!g.lastEndedAt.IsZero() && g.now().Sub(g.lastEndedAt) <= g.cooldown)
	g.mu.Unlock()

	if !comparable || reference == "" {
		return Classification{}
	}

	candidate := normalize(candidateText)
	normalizedReference := normalize(reference)
	if candidate == "" {
		return Classification{}
	}

	if strings.Contains(normalizedReference, candidate) {
		return Classification{IsEcho: true, Confidence: 0.95}
	}

	overlap := wordOverlap(candidate, normalizedReference, g.minWordLength)
	if overlap >= g.overlapThreshold {
		return Classification{IsEcho: true, Confidence: overlap}
	}

	// An acoustic match can confirm a partial textual one, catching
	// echo the recognizer garbled. It never overrides a clean textual
	// miss on its own.
	if overlap >= g.overlapThreshold/2 && len(candidateEnvelope) > 0 {
		if similarity := envelopeSimilarity(candidateEnvelope, referenceFingerprint); similarity >= g.fingerprintThreshold {
			return Classification{IsEcho: true, Confidence: similarity}
		}
	}

	return Classification{Confidence: overlap}
}

func normalize(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(r)
			continue
		}
		// Punctuation splits words, so "жил-был" compares as two
		// tokens rather than one the recognizer would never emit.
		builder.WriteRune(' ')
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}

// wordOverlap reports the share of candidate words, ignoring words at
// or below the minimum length, that appear in the reference.
func wordOverlap(candidate, reference string, minWordLength int) float64 {
	referenceWords := map[string]struct{}{}
	for _, word := range strings.Fields(reference) {
		referenceWords[word] = struct{}{}
	}

	total, matched := 0, 0
	for _, word := range strings.Fields(candidate) {
		if utf8.RuneCountInString(word) <= minWordLength {
			continue
		}
		total++
		if _, ok := referenceWords[word]; ok {
			matched++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// envelopeSimilarity compares two loudness envelopes by normalized
// cross-correlation after resampling to a common length.
func envelopeSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	const points = 32
	ra, rb := resample(a, points), resample(b, points)

	var dot, normA, normB float64
	for i := range points {
		dot += ra[i] * rb[i]
		normA += ra[i] * ra[i]
		normB += rb[i] * rb[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func resample(envelope []float64, points int) []float64 {
	out := make([]float64, points)
	for i := range points {
		pos := float64(i) * float64(len(envelope)-1) / float64(points-1)
		low := int(pos)
		high := low
		if high < len(envelope)-1 {
			high++
		}
		frac := pos - float64(low)
		out[i] = envelope[low]*(1-frac) + envelope[high]*frac
	}
	return out
}
