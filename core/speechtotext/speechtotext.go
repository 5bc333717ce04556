// Package speechtotext defines the transcription contract shared by
// the streaming and batch recognizer clients, plus the deduplication
// applied to their results before anything reacts to them.
package speechtotext

// Source identifies which recognizer strategy produced a result.
type Source string

const (
	SourceNative Source = "native"
	SourceCloud  Source = "cloud"
)

// Result is one recognizer emission. Interim results are advisory
// snapshots that later results overwrite; exactly one final result
// closes each utterance.
type Result struct {
	Text       string
	IsFinal    bool
	Confidence float64
	Source     Source
}
