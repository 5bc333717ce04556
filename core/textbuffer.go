package voicechat

import (
	"strings"
	"sync"
	"unicode"
)

// responseBuffer accumulates streamed response text and hands it out
// again as sentence-sized segments ready for synthesis. Chunks may
// arrive and be consumed concurrently.
type responseBuffer struct {
	mu sync.Mutex

	pending      strings.Builder
	segments     []string
	consumed     int
	textComplete bool
	cleared      bool

	updateSignal chan struct{}
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		updateSignal: make(chan struct{}, 1),
	}
}

func (b *responseBuffer) AddChunk(chunk string) {
	if b == nil || chunk == "" {
		return
	}

	b.mu.Lock()
	b.pending.WriteString(chunk)
	b.cutSegments()
	b.mu.Unlock()

	b.signalUpdate()
}

// TextComplete marks the end of the incoming text. The remainder of
// the pending text, terminal punctuation or not, becomes a segment.
func (b *responseBuffer) TextComplete() {
	if b == nil {
		return
	}

	b.mu.Lock()
	if rest := strings.TrimSpace(b.pending.String()); rest != "" {
		b.segments = append(b.segments, rest)
	}
	b.pending.Reset()
	b.textComplete = true
	b.mu.Unlock()

	b.signalUpdate()
}

// Segments yields sentence segments in order, blocking until more text
// arrives. It returns after TextComplete once all segments are yielded,
// or immediately when the buffer is cleared.
func (b *responseBuffer) Segments(yield func(string) bool) {
	if b == nil {
		return
	}

	for {
		b.mu.Lock()
		if b.cleared {
			b.mu.Unlock()
			return
		}
		if b.consumed < len(b.segments) {
			segment := b.segments[b.consumed]
			b.consumed++
			b.mu.Unlock()
			if !yield(segment) {
				return
			}
			continue
		}
		if b.textComplete {
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()

		<-b.updateSignal
	}
}

func (b *responseBuffer) String() string {
	if b == nil {
		return ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	var full strings.Builder
	for _, segment := range b.segments {
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(segment)
	}
	if rest := strings.TrimSpace(b.pending.String()); rest != "" {
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(rest)
	}
	return full.String()
}

// Clear unblocks any Segments iterator and discards buffered text.
func (b *responseBuffer) Clear() {
	if b == nil {
		return
	}

	b.mu.Lock()
	b.cleared = true
	b.pending.Reset()
	b.mu.Unlock()

	b.signalUpdate()
}

func (b *responseBuffer) signalUpdate() {
	select {
	case b.updateSignal <- struct{}{}:
	default:
	}
}

// cutSegments moves complete sentences out of the pending text. Caller
// holds the lock.
func (b *responseBuffer) cutSegments() {
	text := b.pending.String()
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isSentenceTerminal(runes[i+1]) {
			i++
		}
		if segment := strings.TrimSpace(string(runes[start : i+1])); segment != "" {
			b.segments = append(b.segments, segment)
		}
		start = i + 1
	}
	b.pending.Reset()
	b.pending.WriteString(string(runes[start:]))
}

// splitSentences cuts finished text into the same segments a streamed
// buffer would produce.
func splitSentences(text string) []string {
	buffer := newResponseBuffer()
	buffer.AddChunk(text)
	buffer.TextComplete()

	var sentences []string
	buffer.Segments(func(segment string) bool {
		sentences = append(sentences, segment)
		return true
	})
	return sentences
}

func isSentenceTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return unicode.Is(unicode.Sentence_Terminal, r)
}
