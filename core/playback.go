package voicechat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
)

// SegmentState is the lifecycle state of a playback segment.
type SegmentState string

const (
	SegmentQueued   SegmentState = "queued"
	SegmentPlaying  SegmentState = "playing"
	SegmentFinished SegmentState = "finished"
	SegmentAborted  SegmentState = "aborted"
)

// Segment is one synthesized chunk of assistant speech waiting its turn
// on the audio device.
type Segment struct {
	ID          string
	SourceText  string
	Audio       []byte
	Fingerprint []float64

	state SegmentState
	abort chan struct{}
}

func newSegment(sourceText string, audioData []byte, encoding audio.EncodingInfo) *Segment {
	return &Segment{
		ID:          uuid.NewString(),
		SourceText:  sourceText,
		Audio:       audioData,
		Fingerprint: segmentEnvelope(audioData, encoding),
		state:       SegmentQueued,
		abort:       make(chan struct{}),
	}
}

// segmentEnvelope samples the loudness contour of the audio in 50ms
// windows, for acoustic echo matching against captured speech.
func segmentEnvelope(data []byte, encoding audio.EncodingInfo) []float64 {
	windowBytes := encoding.BytesPerSecond() / 20
	if windowBytes < 2 {
		return nil
	}
	windowBytes -= windowBytes % 2

	var envelope []float64
	for offset := 0; offset < len(data); offset += windowBytes {
		end := offset + windowBytes
		if end > len(data) {
			end = len(data)
		}
		envelope = append(envelope, audio.Frame{Data: data[offset:end]}.RMS(encoding))
	}
	return envelope
}

// audioSink is the slice of an audio device the playback queue drives.
type audioSink interface {
	SendAudio(data []byte) error
	ClearBuffer()
	AwaitMark() error
}

// playbackQueue plays synthesized segments strictly in order on a
// single worker goroutine. Flush aborts everything synchronously and is
// safe to call at any time from any goroutine.
type playbackQueue struct {
	sink     audioSink
	encoding audio.EncodingInfo

	mu      sync.Mutex
	queue   []*Segment
	current *Segment

	wake    chan struct{}
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once
	mutedMu   sync.Mutex
	muted     bool

	onStarted func(*Segment)
	onEnded   func(*Segment)
	onAborted func(pendingTexts []string)
	onIdle    func()
}

func newPlaybackQueue(sink audioSink, encoding audio.EncodingInfo) *playbackQueue {
	return &playbackQueue{
		sink:     sink,
		encoding: encoding,
		wake:     make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (q *playbackQueue) Start() {
	if q == nil {
		return
	}

	q.startOnce.Do(func() {
		go q.processQueue()
	})
}

func (q *playbackQueue) Stop() {
	if q == nil {
		return
	}

	q.Flush()
	q.endOnce.Do(func() {
		close(q.closeCh)
	})
	q.signalWake()
	<-q.done
}

// Enqueue appends a segment to the tail of the queue.
func (q *playbackQueue) Enqueue(segment *Segment) {
	if q == nil || segment == nil {
		return
	}

	q.mu.Lock()
	q.queue = append(q.queue, segment)
	q.mu.Unlock()

	q.signalWake()
}

// Flush aborts the playing segment and every queued one, silencing the
// device before returning. Flushing an idle queue is a no-op.
func (q *playbackQueue) Flush() {
	if q == nil {
		return
	}

	q.mu.Lock()
	var pendingTexts []string
	if q.current != nil {
		q.current.state = SegmentAborted
		pendingTexts = append(pendingTexts, q.current.SourceText)
		close(q.current.abort)
		q.current = nil
	}
	for _, segment := range q.queue {
		segment.state = SegmentAborted
		pendingTexts = append(pendingTexts, segment.SourceText)
	}
	q.queue = nil
	q.mu.Unlock()

	if len(pendingTexts) == 0 {
		return
	}

	q.sink.ClearBuffer()
	if q.onAborted != nil {
		q.onAborted(pendingTexts)
	}
}

// IsPlaying reports whether a segment is currently on the device.
func (q *playbackQueue) IsPlaying() bool {
	if q == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil
}

// SetMuted drops audio on the device while muted. Segment lifecycles
// still run so turn accounting stays intact.
func (q *playbackQueue) SetMuted(muted bool) {
	if q == nil {
		return
	}

	q.mutedMu.Lock()
	q.muted = muted
	q.mutedMu.Unlock()
	if muted {
		q.sink.ClearBuffer()
	}
}

func (q *playbackQueue) isMuted() bool {
	q.mutedMu.Lock()
	defer q.mutedMu.Unlock()
	return q.muted
}

func (q *playbackQueue) signalWake() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *playbackQueue) processQueue() {
	defer close(q.done)

	for {
		select {
		case <-q.closeCh:
			return
		default:
		}

		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.closeCh:
				return
			}
		}
		segment := q.queue[0]
		q.queue = q.queue[1:]
		segment.state = SegmentPlaying
		q.current = segment
		q.mu.Unlock()

		q.playSegment(segment)
	}
}

func (q *playbackQueue) playSegment(segment *Segment) {
	if q.onStarted != nil {
		q.onStarted(segment)
	}

	if !q.isMuted() {
		if err := q.sink.SendAudio(segment.Audio); err != nil {
			logger.Error("failed to send segment audio to device", "error", err, "segmentID", segment.ID)
		}
	}

	awaited := make(chan struct{})
	go func() {
		defer close(awaited)
		if err := q.sink.AwaitMark(); err != nil {
			logger.Error("failed to await segment end", "error", err, "segmentID", segment.ID)
		}
	}()

	select {
	case <-awaited:
	case <-segment.abort:
		return
	case <-q.closeCh:
		return
	}

	q.mu.Lock()
	finished := segment.state == SegmentPlaying
	if finished {
		segment.state = SegmentFinished
		q.current = nil
	}
	idle := finished && len(q.queue) == 0
	q.mu.Unlock()

	if !finished {
		return
	}
	if q.onEnded != nil {
		q.onEnded(segment)
	}
	if idle && q.onIdle != nil {
		q.onIdle()
	}
}
