package speechtotext

import (
	"strings"
	"sync"
)

const (
	defaultExtensionThreshold = 10
	defaultVariationRatio     = 0.2
)

// Deduplicator suppresses recognizer re-emissions of the utterance it
// already reported: exact repeats, longer corrected re-emissions of
// the same text, and minor variations within an edit-distance band.
// Safe for concurrent use.
type Deduplicator struct {
	extensionThreshold int
	variationRatio     float64

	mu        sync.Mutex
	lastFinal string
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		extensionThreshold: defaultExtensionThreshold,
		variationRatio:     defaultVariationRatio,
	}
}

// ShouldForward reports whether text is a genuinely new utterance
// relative to the last forwarded one, updating the stored reference
// either way so later comparisons use the freshest text.
func (d *Deduplicator) ShouldForward(text string) bool {
	if d == nil {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	trimmed := strings.TrimSpace(text)
	previous := d.lastFinal
	d.lastFinal = trimmed

	if trimmed == "" {
		d.lastFinal = previous
		return false
	}
	if previous == "" {
		return true
	}

	normalized := strings.ToLower(trimmed)
	normalizedPrevious := strings.ToLower(previous)

	if normalized == normalizedPrevious {
		return false
	}

	if strings.HasPrefix(normalized, normalizedPrevious) &&
		len([]rune(normalized))-len([]rune(normalizedPrevious)) > d.extensionThreshold {
		return false
	}

	longer := max(len([]rune(normalized)), len([]rune(normalizedPrevious)))
	if distance := editDistance(normalized, normalizedPrevious); float64(distance) < d.variationRatio*float64(longer) {
		return false
	}

	return true
}

// Reset forgets the last forwarded utterance, for session boundaries.
func (d *Deduplicator) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastFinal = ""
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	previous := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(rb)]
}
