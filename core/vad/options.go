package vad

import (
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

const (
	defaultSpeechThreshold   = 0.015
	defaultSilenceDuration   = 700 * time.Millisecond
	defaultMinSpeechDuration = 120 * time.Millisecond
	defaultPreRollDuration   = 300 * time.Millisecond
)

type DetectorOption func(*Detector)

// WithEncoding overrides the encoding the detector assumes for incoming
// frames. Defaults to [audio.GetDefaultEncodingInfo].
func WithEncoding(encoding audio.EncodingInfo) DetectorOption {
	return func(d *Detector) {
		d.encoding = encoding
	}
}

// WithSpeechThreshold overrides the normalized RMS level above which a
// frame counts as speech.
func WithSpeechThreshold(threshold float64) DetectorOption {
	return func(d *Detector) {
		d.speechThreshold = threshold
	}
}

// WithSilenceDuration overrides how long the signal has to stay below
// the threshold before an open span is closed.
func WithSilenceDuration(duration time.Duration) DetectorOption {
	return func(d *Detector) {
		d.silenceDuration = duration
	}
}

// WithMinSpeechDuration overrides how long the signal has to stay above
// the threshold before a span is opened. Crossings shorter than this
// are treated as transient noise.
func WithMinSpeechDuration(duration time.Duration) DetectorOption {
	return func(d *Detector) {
		d.minSpeechDuration = duration
	}
}

// WithMinSpanBytes overrides the minimum accumulated audio size for a
// closed span to be reported. Smaller spans are dropped silently.
func WithMinSpanBytes(size int) DetectorOption {
	return func(d *Detector) {
		d.minSpanBytes = size
	}
}

// WithPreRoll overrides how much audio from just before the trigger
// point is prepended to each span.
func WithPreRoll(duration time.Duration) DetectorOption {
	return func(d *Detector) {
		d.preRollDuration = duration
	}
}

// WithSpeechStartedCallback registers a callback fired once per span,
// when enough consecutive speech frames have been observed.
func WithSpeechStartedCallback(callback func()) DetectorOption {
	return func(d *Detector) {
		d.onSpeechStarted = callback
	}
}

// WithSpeechEndedCallback registers a callback fired with the completed
// span once trailing silence has run out.
func WithSpeechEndedCallback(callback func(span Span)) DetectorOption {
	return func(d *Detector) {
		d.onSpeechEnded = callback
	}
}

// WithGatedSpeechCallback registers a callback fired instead of the
// regular pair while the detector is gated (assistant audio playing).
func WithGatedSpeechCallback(callback func(span Span)) DetectorOption {
	return func(d *Detector) {
		d.onGatedSpeech = callback
	}
}
