package speechtotext

import "fmt"

// TranscriptionError wraps a recognizer failure with enough context to
// decide whether to retry the same strategy or switch to the fallback.
type TranscriptionError struct {
	Source Source
	Op     string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s transcription: %s: %v", e.Source, e.Op, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
