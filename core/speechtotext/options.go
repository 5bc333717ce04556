package speechtotext

import "github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"

type TranscriptionOptions struct {
	InterimResultCallback func(result Result)
	FinalResultCallback   func(result Result)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	EncodingInfo audio.EncodingInfo
	Language     string
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimResultCallback(callback func(result Result)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimResultCallback = callback
	}
}

func WithFinalResultCallback(callback func(result Result)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.FinalResultCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Language = language
	}
}
