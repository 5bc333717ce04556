package voicechat

import (
	"context"
	"errors"
	"sync"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/vad"
)

// StreamingTranscriber transcribes a continuous audio feed over a live
// connection, delivering results through callbacks.
type StreamingTranscriber interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

// BatchTranscriber transcribes one finished utterance at a time.
type BatchTranscriber interface {
	Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscriptionOption) (speechtotext.Result, error)
}

var errNoTranscriber = errors.New("no transcriber available")

// transcriptionService fronts both transcription strategies. It prefers
// the streaming transcriber and falls back to batch for the rest of the
// session once streaming has failed too many times in a row.
type transcriptionService struct {
	streaming StreamingTranscriber
	batch     BatchTranscriber
	dedup     *speechtotext.Deduplicator

	failureCeiling int

	mu             sync.Mutex
	failures       int
	fallbackActive bool
	streamOpen     bool
}

func newTranscriptionService(streaming StreamingTranscriber, batch BatchTranscriber, failureCeiling int) *transcriptionService {
	return &transcriptionService{
		streaming:      streaming,
		batch:          batch,
		dedup:          speechtotext.NewDeduplicator(),
		failureCeiling: failureCeiling,
		fallbackActive: streaming == nil,
	}
}

func (s *transcriptionService) usingFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbackActive
}

// start opens the streaming connection when the streaming strategy is
// active. A failed open counts toward the fallback ceiling.
func (s *transcriptionService) start(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	if s.usingFallback() {
		if s.batch == nil {
			return errNoTranscriber
		}
		return nil
	}

	if err := s.streaming.Transcribe(ctx, opts...); err != nil {
		s.recordStreamingFailure(err)
		if s.usingFallback() && s.batch != nil {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.streamOpen = true
	s.failures = 0
	s.mu.Unlock()
	return nil
}

// feed pushes captured audio to the live connection. It is a no-op in
// fallback mode, where utterances go through transcribeSpan instead.
func (s *transcriptionService) feed(audio []byte) {
	s.mu.Lock()
	open := s.streamOpen && !s.fallbackActive
	s.mu.Unlock()
	if !open {
		return
	}

	if err := s.streaming.SendAudio(audio); err != nil {
		s.recordStreamingFailure(err)
	}
}

// transcribeSpan sends a finished utterance through the batch
// transcriber.
func (s *transcriptionService) transcribeSpan(ctx context.Context, span vad.Span, opts ...speechtotext.TranscriptionOption) (speechtotext.Result, error) {
	if s.batch == nil {
		return speechtotext.Result{}, errNoTranscriber
	}

	opts = append(opts, speechtotext.WithEncodingInfo(span.Encoding))
	return s.batch.Transcribe(ctx, span.Audio, opts...)
}

// shouldForward filters duplicate finals regardless of which strategy
// produced them.
func (s *transcriptionService) shouldForward(text string) bool {
	return s.dedup.ShouldForward(text)
}

func (s *transcriptionService) stop() {
	s.mu.Lock()
	open := s.streamOpen
	s.streamOpen = false
	s.mu.Unlock()

	if !open {
		return
	}
	if err := s.streaming.StopStream(); err != nil {
		logger.Error("failed to stop transcription stream", "error", err)
	}
}

func (s *transcriptionService) reset() {
	s.stop()
	s.dedup.Reset()

	s.mu.Lock()
	s.failures = 0
	s.fallbackActive = s.streaming == nil
	s.mu.Unlock()
}

func (s *transcriptionService) recordStreamingFailure(err error) {
	s.mu.Lock()
	s.failures++
	s.streamOpen = false
	tripped := !s.fallbackActive && s.failures >= s.failureCeiling && s.batch != nil
	if tripped {
		s.fallbackActive = true
	}
	s.mu.Unlock()

	if tripped {
		logger.Warn("streaming transcription failed repeatedly, switching to batch fallback", "error", err, "failures", s.failureCeiling)
	} else {
		logger.Error("streaming transcription failure", "error", err)
	}
}
