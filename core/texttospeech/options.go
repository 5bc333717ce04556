package texttospeech

import "github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"

type TextToSpeechOptions struct {
	// SpeechAudioCallback is called when the TTS client produces audio
	SpeechAudioCallback func(audio []byte)
	// SpeechMarkCallback is called when the TTS client has produced speech up
	// to the marked text. Each mark is called once.
	SpeechMarkCallback func(markedText string)
	// SpeechEndedCallback is called when the TTS client has finished producing
	// speech for the whole request
	SpeechEndedCallback func(report SpeechEndedReport)
	// ErrorCallback is called when the TTS client encounters an error, this
	// usually means the TTS client has been cancelled
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithSpeechAudioCallback(callback func([]byte)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.SpeechAudioCallback = callback
	}
}

func WithSpeechMarkCallback(callback func(markedText string)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.SpeechMarkCallback = callback
	}
}

func WithSpeechEndedCallback(callback func(report SpeechEndedReport)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(error)) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

// SpeechGenerator is a single synthesis request accepting incremental
// text. Audio and marks come back through the callbacks the generator
// was created with.
type SpeechGenerator interface {
	// SendText sends text to the generator. Speech is guaranteed to be
	// generated in the order text is sent.
	//
	// SendText will error if EndOfText, Cancel or Close has been called.
	SendText(text string) error
	// Mark marks the current point in the text. The mark callback fires
	// after the text sent up to the mark has been generated, though not
	// necessarily at the exact boundary.
	//
	// Mark will error if EndOfText, Cancel or Close has been called.
	Mark() error
	// EndOfText signals that no more text will be sent. The generator
	// closes itself after all remaining speech has been generated.
	//
	// EndOfText will error if Cancel or Close has been called.
	// Repeated calls to EndOfText are ignored.
	EndOfText() error
	// Cancel immediately stops further speech generation and closes the
	// generator.
	//
	// Cancel will error if Close has been called.
	// Repeated calls to Cancel are ignored.
	Cancel() error
	// Close immediately closes the generator. No more speech is
	// generated after this call.
	//
	// Repeated calls to Close are ignored.
	Close() error
}

type SpeechEndedReport struct {
	Cancelled bool
}
