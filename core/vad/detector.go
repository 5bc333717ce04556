// Package vad implements energy based voice activity detection with
// hysteresis. Frames are scored by their normalized RMS level; a span
// opens after the level holds above the speech threshold long enough,
// and closes once trailing silence outlasts the silence duration.
package vad

import (
	"sync"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

// Detector turns a stream of audio frames into speech spans. It keeps
// at most one span in flight and is safe for use from a single feeding
// goroutine with gating toggled from others.
type Detector struct {
	encoding audio.EncodingInfo

	speechThreshold   float64
	silenceDuration   time.Duration
	minSpeechDuration time.Duration
	minSpanBytes      int
	preRollDuration   time.Duration

	onSpeechStarted func()
	onSpeechEnded   func(span Span)
	onGatedSpeech   func(span Span)

	mu      sync.Mutex
	gated   bool
	current *Span
	// gatedSpan remembers whether the in-flight span opened while
	// gated, so its routing does not flip mid-span.
	gatedSpan bool

	speechRun  time.Duration
	silenceRun time.Duration
	preRoll    []audio.Frame
	preRollLen time.Duration
}

// NewDetector creates a detector with default thresholds, tunable
// through options.
func NewDetector(opts ...DetectorOption) *Detector {
	detector := &Detector{
		encoding:          audio.GetDefaultEncodingInfo(),
		speechThreshold:   defaultSpeechThreshold,
		silenceDuration:   defaultSilenceDuration,
		minSpeechDuration: defaultMinSpeechDuration,
		preRollDuration:   defaultPreRollDuration,
	}
	for _, opt := range opts {
		opt(detector)
	}
	return detector
}

// SetGated switches the detector between the dictation path and the
// interruption path. While gated, completed spans are reported through
// the gated speech callback only.
func (d *Detector) SetGated(gated bool) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gated = gated
}

// Reset discards any in-flight span and accumulated hysteresis state.
func (d *Detector) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
	d.speechRun = 0
	d.silenceRun = 0
	d.preRoll = nil
	d.preRollLen = 0
}

// Active reports whether a speech span is currently open.
func (d *Detector) Active() bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current != nil
}

// Feed scores one frame and advances the hysteresis state machine.
// Callbacks fire synchronously on the feeding goroutine, preserving
// started-before-ended ordering per span.
func (d *Detector) Feed(frame audio.Frame) {
	if d == nil || len(frame.Data) == 0 {
		return
	}

	rms := frame.RMS(d.encoding)
	frameDuration := frame.Duration(d.encoding)

	d.mu.Lock()
	var (
		started func()
		ended   func(span Span)
		span    Span
	)

	if d.current == nil {
		d.bufferPreRoll(frame, frameDuration)
		if rms >= d.speechThreshold {
			d.speechRun += frameDuration
			if d.speechRun >= d.minSpeechDuration {
				d.openSpan(frame)
				if !d.gatedSpan {
					started = d.onSpeechStarted
				}
			}
		} else {
			d.speechRun = 0
		}
	} else {
		d.current.appendFrame(frame, rms)
		d.current.EndedAt = frame.Timestamp.Add(frameDuration)
		if rms >= d.speechThreshold {
			d.silenceRun = 0
		} else {
			d.silenceRun += frameDuration
			if d.silenceRun >= d.silenceDuration {
				span = d.closeSpan()
				if span.Size() >= d.minSpanBytes {
					if d.gatedSpan {
						ended = d.onGatedSpeech
					} else {
						ended = d.onSpeechEnded
					}
				}
				d.gatedSpan = false
			}
		}
	}
	d.mu.Unlock()

	if started != nil {
		started()
	}
	if ended != nil {
		ended(span)
	}
}

func (d *Detector) bufferPreRoll(frame audio.Frame, frameDuration time.Duration) {
	d.preRoll = append(d.preRoll, frame)
	d.preRollLen += frameDuration
	for len(d.preRoll) > 1 && d.preRollLen > d.preRollDuration {
		d.preRollLen -= d.preRoll[0].Duration(d.encoding)
		d.preRoll = d.preRoll[1:]
	}
}

func (d *Detector) openSpan(trigger audio.Frame) {
	span := &Span{Encoding: d.encoding}
	for _, buffered := range d.preRoll {
		span.appendFrame(buffered, buffered.RMS(d.encoding))
	}
	if len(d.preRoll) > 0 {
		span.StartedAt = d.preRoll[0].Timestamp
	} else {
		span.StartedAt = trigger.Timestamp
	}
	span.EndedAt = trigger.Timestamp.Add(trigger.Duration(d.encoding))

	d.current = span
	d.gatedSpan = d.gated
	d.preRoll = nil
	d.preRollLen = 0
	d.speechRun = 0
	d.silenceRun = 0
}

func (d *Detector) closeSpan() Span {
	span := *d.current
	// Trim the trailing silence run off the reported end time; the
	// audio itself keeps it since transcription tolerates it.
	span.EndedAt = span.EndedAt.Add(-d.silenceRun)
	d.current = nil
	d.speechRun = 0
	d.silenceRun = 0
	return span
}
