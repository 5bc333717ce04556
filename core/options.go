package voicechat

import (
	"context"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/echoguard"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/texttospeech"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/vad"
)

// AudioDevice is the microphone and speaker pair a session runs on.
type AudioDevice interface {
	StartCapture(ctx context.Context, onFrame func(frame audio.Frame)) error
	SendAudio(data []byte) error
	ClearBuffer()
	AwaitMark() error
	EncodingInfo() audio.EncodingInfo
	Close()
}

// LLMWithStream generates a streamed response to a prompt.
type LLMWithStream interface {
	PromptWithStream(ctx context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream
}

// StructuredLLM answers a prompt with a value matching the schema of
// outputSchema, which must be a non-nil pointer.
type StructuredLLM interface {
	PromptWithStructure(ctx context.Context, prompt string, outputSchema any, opts ...llms.StructuredPromptOption) error
}

// TextToSpeech opens synthesis requests.
type TextToSpeech interface {
	NewSpeechGenerator(ctx context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGenerator, error)
}

const (
	defaultGreeting = "Привет! Я твой помощник по русскому языку. О чём поговорим сегодня?"

	defaultSystemPrompt = "Ты дружелюбный преподаватель русского языка, ведущий устный урок. " +
		"Отвечай коротко, одним-тремя предложениями, разговорным языком, без списков и разметки. " +
		"Мягко поправляй ошибки ученика и задавай встречные вопросы, чтобы разговор продолжался."

	defaultLanguage = "ru"

	defaultStreamingFailureCeiling = 3
	defaultModelRetries            = 3
	defaultSynthesisRetries        = 2
	defaultRetryBackoff            = 500 * time.Millisecond
)

type engineOptions struct {
	device     AudioDevice
	streaming  StreamingTranscriber
	batch      BatchTranscriber
	tts        TextToSpeech
	llm        LLMWithStream
	classifier StructuredLLM

	greeting     string
	systemPrompt string
	language     string

	streamingFailureCeiling int
	modelRetries            int
	synthesisRetries        int
	retryBackoff            time.Duration

	vadOptions  []vad.DetectorOption
	echoOptions []echoguard.GuardOption

	eventCallback             func(event events.Event)
	interimTranscriptCallback func(transcript string)
	transcriptCallback        func(transcript, source string)
	responseSegmentCallback   func(segment string)
	responseCallback          func(text string)
	phaseChangeCallback       func(from, to string)
	errorCallback             func(category string, err error)
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		greeting:                defaultGreeting,
		systemPrompt:            defaultSystemPrompt,
		language:                defaultLanguage,
		streamingFailureCeiling: defaultStreamingFailureCeiling,
		modelRetries:            defaultModelRetries,
		synthesisRetries:        defaultSynthesisRetries,
		retryBackoff:            defaultRetryBackoff,
	}
}

type EngineOption func(*engineOptions)

func WithAudioDevice(device AudioDevice) EngineOption {
	return func(o *engineOptions) {
		o.device = device
	}
}

func WithStreamingTranscriber(transcriber StreamingTranscriber) EngineOption {
	return func(o *engineOptions) {
		o.streaming = transcriber
	}
}

func WithBatchTranscriber(transcriber BatchTranscriber) EngineOption {
	return func(o *engineOptions) {
		o.batch = transcriber
	}
}

func WithTextToSpeech(tts TextToSpeech) EngineOption {
	return func(o *engineOptions) {
		o.tts = tts
	}
}

func WithLLM(llm LLMWithStream) EngineOption {
	return func(o *engineOptions) {
		o.llm = llm
	}
}

// WithInterruptionClassifier enables model-backed triage of barge-in
// utterances. Without it every genuine barge-in starts a new turn.
func WithInterruptionClassifier(classifier StructuredLLM) EngineOption {
	return func(o *engineOptions) {
		o.classifier = classifier
	}
}

func WithGreeting(greeting string) EngineOption {
	return func(o *engineOptions) {
		if greeting != "" {
			o.greeting = greeting
		}
	}
}

func WithSystemPrompt(systemPrompt string) EngineOption {
	return func(o *engineOptions) {
		if systemPrompt != "" {
			o.systemPrompt = systemPrompt
		}
	}
}

func WithLanguage(language string) EngineOption {
	return func(o *engineOptions) {
		if language != "" {
			o.language = language
		}
	}
}

func WithVADOptions(opts ...vad.DetectorOption) EngineOption {
	return func(o *engineOptions) {
		o.vadOptions = append(o.vadOptions, opts...)
	}
}

func WithEchoGuardOptions(opts ...echoguard.GuardOption) EngineOption {
	return func(o *engineOptions) {
		o.echoOptions = append(o.echoOptions, opts...)
	}
}

func WithEventCallback(callback func(event events.Event)) EngineOption {
	return func(o *engineOptions) {
		o.eventCallback = callback
	}
}

func WithInterimTranscriptCallback(callback func(transcript string)) EngineOption {
	return func(o *engineOptions) {
		o.interimTranscriptCallback = callback
	}
}

func WithTranscriptCallback(callback func(transcript, source string)) EngineOption {
	return func(o *engineOptions) {
		o.transcriptCallback = callback
	}
}

func WithResponseSegmentCallback(callback func(segment string)) EngineOption {
	return func(o *engineOptions) {
		o.responseSegmentCallback = callback
	}
}

func WithResponseCallback(callback func(text string)) EngineOption {
	return func(o *engineOptions) {
		o.responseCallback = callback
	}
}

func WithPhaseChangeCallback(callback func(from, to string)) EngineOption {
	return func(o *engineOptions) {
		o.phaseChangeCallback = callback
	}
}

func WithErrorCallback(callback func(category string, err error)) EngineOption {
	return func(o *engineOptions) {
		o.errorCallback = callback
	}
}
