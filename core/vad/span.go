package vad

import (
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

// Span is a contiguous stretch of detected user speech, including the
// pre-roll audio captured just before the detector tripped.
type Span struct {
	StartedAt time.Time
	EndedAt   time.Time

	Audio    []byte
	Encoding audio.EncodingInfo

	frameRMS []float64
}

// Duration reports the wall-clock length of the span.
func (s *Span) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Size reports the accumulated audio size in bytes.
func (s *Span) Size() int {
	return len(s.Audio)
}

// PeakRMS reports the loudest frame observed within the span.
func (s *Span) PeakRMS() float64 {
	peak := 0.0
	for _, rms := range s.frameRMS {
		if rms > peak {
			peak = rms
		}
	}
	return peak
}

// AverageRMS reports the mean frame energy across the span.
func (s *Span) AverageRMS() float64 {
	if len(s.frameRMS) == 0 {
		return 0
	}
	sum := 0.0
	for _, rms := range s.frameRMS {
		sum += rms
	}
	return sum / float64(len(s.frameRMS))
}

// Envelope returns the per-frame RMS sequence, usable as a coarse
// loudness fingerprint of the span.
func (s *Span) Envelope() []float64 {
	envelope := make([]float64, len(s.frameRMS))
	copy(envelope, s.frameRMS)
	return envelope
}

func (s *Span) appendFrame(frame audio.Frame, rms float64) {
	s.Audio = append(s.Audio, frame.Data...)
	s.frameRMS = append(s.frameRMS, rms)
}
