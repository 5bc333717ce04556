package texttospeech

import "fmt"

// SynthesisError wraps a synthesis failure. Callers use it to decide
// between retrying the request and degrading to a text-only response.
type SynthesisError struct {
	Op  string
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis: %s: %v", e.Op, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
