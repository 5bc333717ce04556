// Package voicechat runs real-time voice conversations for spoken
// language practice: it captures microphone audio, detects speech,
// transcribes it, generates a model response and speaks it back,
// handling interruptions along the way.
package voicechat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/echoguard"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/hallucinations"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/vad"
)

var (
	ErrMissingAudioDevice = errors.New("an audio device is required")
	ErrMissingLLM         = errors.New("a language model is required")
	ErrMissingTTS         = errors.New("a text to speech client is required")
	ErrMissingTranscriber = errors.New("at least one transcriber is required")
	ErrSessionActive      = errors.New("a session is already active")
	ErrSessionFailed      = errors.New("session is in the error state, reset it first")
)

// Engine owns one voice conversation at a time. All public methods are
// safe to call from any goroutine.
type Engine struct {
	opts     engineOptions
	encoding audio.EncodingInfo

	detector *vad.Detector
	stt      *transcriptionService
	echo     *echoguard.Guard
	tokens   generationTokens
	turns    turnLog
	emit     eventEmitter

	stateMu sync.Mutex
	state   SessionState

	// rebuilt per session
	playback      *playbackQueue
	queue         *turnQueue
	sessionCancel context.CancelFunc
	started       atomic.Bool

	activeMu sync.Mutex
	active   *activeTurn

	envelopeMu        sync.Mutex
	lastGatedEnvelope []float64
}

// activeTurn tracks what the assistant is saying right now so barge-ins
// and completions can account for it.
type activeTurn struct {
	token        uint64
	turnID       string
	responseText string
	startedAt    time.Time

	mu     sync.Mutex
	spoken []string
}

func (t *activeTurn) addSpoken(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spoken = append(t.spoken, text)
}

func (t *activeTurn) spokenText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var joined string
	for i, segment := range t.spoken {
		if i > 0 {
			joined += " "
		}
		joined += segment
	}
	return joined
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := defaultEngineOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.device == nil {
		return nil, ErrMissingAudioDevice
	}
	if options.llm == nil {
		return nil, ErrMissingLLM
	}
	if options.tts == nil {
		return nil, ErrMissingTTS
	}
	if options.streaming == nil && options.batch == nil {
		return nil, ErrMissingTranscriber
	}

	engine := &Engine{
		opts:     options,
		encoding: options.device.EncodingInfo(),
		stt:      newTranscriptionService(options.streaming, options.batch, options.streamingFailureCeiling),
		echo:     echoguard.NewGuard(options.echoOptions...),
		emit:     newCallbackEventEmitter(options),
		state: SessionState{
			Phase:        PhaseIdle,
			MicEnabled:   true,
			SoundEnabled: true,
		},
	}

	detectorOpts := []vad.DetectorOption{
		vad.WithEncoding(engine.encoding),
		vad.WithSpeechStartedCallback(engine.onSpeechStarted),
		vad.WithSpeechEndedCallback(engine.onSpeechEnded),
		vad.WithGatedSpeechCallback(engine.onGatedSpeech),
	}
	detectorOpts = append(detectorOpts, options.vadOptions...)
	engine.detector = vad.NewDetector(detectorOpts...)

	return engine, nil
}

// StartSession acquires the microphone, opens transcription and greets
// the user. The session runs until EndSession or an unrecoverable
// failure.
func (e *Engine) StartSession(ctx context.Context) error {
	if e == nil {
		return nil
	}
	if e.phase() == PhaseError {
		return ErrSessionFailed
	}
	if !e.started.CompareAndSwap(false, true) {
		return ErrSessionActive
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	e.sessionCancel = cancel

	playback := newPlaybackQueue(e.opts.device, e.encoding)
	playback.onStarted = e.onSegmentStarted
	playback.onEnded = e.onSegmentEnded
	playback.onAborted = e.onSegmentsAborted
	playback.onIdle = e.onPlaybackIdle
	queue := newTurnQueue()

	e.stateMu.Lock()
	e.playback = playback
	e.queue = queue
	e.stateMu.Unlock()

	playback.Start()
	playback.SetMuted(!e.soundEnabled())
	queue.Start(sessionCtx, e.processTurn)

	if err := e.stt.start(sessionCtx,
		speechtotext.WithEncodingInfo(e.encoding),
		speechtotext.WithLanguage(e.opts.language),
		speechtotext.WithInterimResultCallback(e.onInterimResult),
		speechtotext.WithFinalResultCallback(e.onFinalResult),
	); err != nil {
		e.teardown()
		e.started.Store(false)
		return err
	}

	go func() {
		err := e.opts.device.StartCapture(sessionCtx, e.onFrame)
		if err == nil || sessionCtx.Err() != nil {
			return
		}
		if !audio.IsDeviceError(err) {
			err = fmt.Errorf("capture stream ended: %w", err)
		}
		e.failSession(ErrorCategoryDevice, err)
	}()

	e.setPhase(PhaseListening)
	e.queue.Ingest(turnTrigger{
		token:     e.tokens.Current(),
		utterance: e.opts.greeting,
		greeting:  true,
	})
	return nil
}

// EndSession stops audio in both directions and returns the engine to
// idle. The conversation log survives until Reset.
func (e *Engine) EndSession() error {
	if e == nil || !e.started.CompareAndSwap(true, false) {
		return nil
	}

	e.tokens.Advance()
	e.teardown()
	e.setPhase(PhaseIdle)
	return nil
}

// Reset ends the session if one is running and clears all conversation
// state, including the error state.
func (e *Engine) Reset() error {
	if e == nil {
		return nil
	}

	if e.started.CompareAndSwap(true, false) {
		e.tokens.Advance()
		e.teardown()
	}

	e.turns.reset()
	e.stt.reset()
	e.detector.Reset()
	e.setActiveTurn(nil)

	e.stateMu.Lock()
	e.state = SessionState{
		Phase:        PhaseIdle,
		MicEnabled:   true,
		SoundEnabled: true,
	}
	e.stateMu.Unlock()
	return nil
}

func (e *Engine) teardown() {
	if e.sessionCancel != nil {
		e.sessionCancel()
	}
	e.queue.Stop()
	e.playback.Stop()
	e.stt.stop()
	e.detector.Reset()
	if stopper, ok := e.opts.device.(interface{ StopCapture() error }); ok {
		if err := stopper.StopCapture(); err != nil {
			logger.Error("failed to stop audio capture", "error", err)
		}
	}
}

// SetMicEnabled gates the microphone. Disabling it drops frames before
// they reach speech detection; a half-captured utterance is discarded.
func (e *Engine) SetMicEnabled(enabled bool) {
	if e == nil {
		return
	}

	e.stateMu.Lock()
	changed := e.state.MicEnabled != enabled
	e.state.MicEnabled = enabled
	e.stateMu.Unlock()

	if changed && !enabled {
		e.detector.Reset()
	}
}

// SetSoundEnabled gates the speaker. Disabling it silences playback
// without stopping segment accounting.
func (e *Engine) SetSoundEnabled(enabled bool) {
	if e == nil {
		return
	}

	e.stateMu.Lock()
	e.state.SoundEnabled = enabled
	playback := e.playback
	e.stateMu.Unlock()

	if playback != nil {
		playback.SetMuted(!enabled)
	}
}

func (e *Engine) micEnabled() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state.MicEnabled
}

func (e *Engine) soundEnabled() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state.SoundEnabled
}

func (e *Engine) failSession(category ErrorCategory, err error) {
	if err == nil || !e.started.Load() {
		return
	}

	logger.Error("session failed", "category", string(category), "error", err)
	e.emit(events.NewSessionError(string(category), err))
	e.setPhase(PhaseError)
}

func (e *Engine) setActiveTurn(turn *activeTurn) {
	e.activeMu.Lock()
	e.active = turn
	e.activeMu.Unlock()
}

func (e *Engine) activeTurnState() *activeTurn {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	return e.active
}

// onFrame receives raw microphone audio on the capture goroutine.
func (e *Engine) onFrame(frame audio.Frame) {
	if !e.started.Load() || !e.micEnabled() {
		return
	}

	e.emit(events.NewUserAudioFrame(frame.Data))
	e.detector.Feed(frame)
	if !e.stt.usingFallback() {
		e.stt.feed(frame.Data)
	}
}

func (e *Engine) onSpeechStarted() {
	if e.phase() == PhaseListening {
		e.emit(events.NewUserSpeechStarted())
	}
}

func (e *Engine) onSpeechEnded(span vad.Span) {
	e.emit(events.NewUserSpeechEnded(span.Duration(), span.PeakRMS(), span.AverageRMS()))
	if e.stt.usingFallback() {
		go e.transcribeSpan(span, span.Envelope())
	}
}

// onGatedSpeech handles spans captured while the assistant was
// speaking. The envelope is kept so a streaming transcript of the same
// speech can be echo-checked acoustically.
func (e *Engine) onGatedSpeech(span vad.Span) {
	e.envelopeMu.Lock()
	e.lastGatedEnvelope = span.Envelope()
	e.envelopeMu.Unlock()

	if e.stt.usingFallback() {
		go e.transcribeSpan(span, span.Envelope())
	}
}

func (e *Engine) transcribeSpan(span vad.Span, envelope []float64) {
	token := e.tokens.Current()
	result, err := e.stt.transcribeSpan(context.Background(),
		span,
		speechtotext.WithLanguage(e.opts.language),
	)
	if err != nil {
		logger.Error("failed to transcribe utterance", "error", err)
		e.emit(events.NewSessionError(string(ErrorCategoryTranscription), err))
		return
	}
	if !e.tokens.IsCurrent(token) {
		return
	}

	e.handleFinal(result, envelope)
}

func (e *Engine) onInterimResult(result speechtotext.Result) {
	if !e.started.Load() {
		return
	}

	e.stateMu.Lock()
	e.state.PendingInterimText = result.Text
	e.stateMu.Unlock()
	e.emit(events.NewUserTranscriptInterim(result.Text))
}

func (e *Engine) onFinalResult(result speechtotext.Result) {
	if !e.started.Load() {
		return
	}

	var envelope []float64
	if e.phase() == PhaseSpeaking {
		e.envelopeMu.Lock()
		envelope = e.lastGatedEnvelope
		e.envelopeMu.Unlock()
	}
	e.handleFinal(result, envelope)
}

// handleFinal is the single funnel every final transcript goes through,
// whichever transcriber produced it.
func (e *Engine) handleFinal(result speechtotext.Result, envelope []float64) {
	text, ok := hallucinations.Filter(result.Text)
	if !ok {
		logger.Debug("discarded transcription artifact", "text", result.Text)
		return
	}

	if classification := e.echo.Classify(text, envelope); classification.IsEcho {
		logger.Debug("discarded assistant echo", "text", text, "confidence", classification.Confidence)
		return
	}

	if !e.stt.shouldForward(text) {
		logger.Debug("discarded duplicate transcript", "text", text)
		return
	}

	e.stateMu.Lock()
	e.state.PendingInterimText = ""
	e.stateMu.Unlock()
	e.emit(events.NewUserTranscriptFinal(text, result.Confidence, string(result.Source)))

	switch e.phase() {
	case PhaseListening:
		token := e.tokens.Advance()
		e.queue.Ingest(turnTrigger{token: token, utterance: text})
	case PhaseSpeaking:
		e.handleBargeIn(text)
	case PhaseTranscribing, PhaseAwaitingResponse:
		// The user kept talking before the previous response landed:
		// the newest utterance wins.
		token := e.tokens.Advance()
		e.queue.CancelActive()
		e.playback.Flush()
		e.queue.Ingest(turnTrigger{token: token, utterance: text})
	default:
	}
}

// handleBargeIn stops playback immediately and routes the utterance
// into a new turn that acknowledges the interrupted response.
func (e *Engine) handleBargeIn(text string) {
	e.emit(events.NewUserBargeIn(text))

	token := e.tokens.Advance()
	e.queue.CancelActive()
	e.playback.Flush()
	e.detector.SetGated(false)

	var interrupted *llms.Turn
	if active := e.activeTurnState(); active != nil {
		content := active.spokenText()
		if content == "" {
			content = active.responseText
		}
		e.turns.append(llms.TurnRoleAssistant, content, true, active.startedAt)
		if turn, ok := e.turns.lastAssistant(); ok {
			interrupted = &turn
		}
		e.setActiveTurn(nil)
	}
	e.setPhase(PhaseListening)

	if e.opts.classifier == nil {
		e.queue.Ingest(turnTrigger{token: token, utterance: text, interrupted: interrupted})
		return
	}
	go e.triageBargeIn(token, text, interrupted)
}

func (e *Engine) onSegmentStarted(segment *Segment) {
	active := e.activeTurnState()
	if active == nil || !e.tokens.IsCurrent(active.token) {
		return
	}

	e.detector.SetGated(true)
	e.echo.SegmentStarted(segment.SourceText, segment.Fingerprint)
	e.setPhase(PhaseSpeaking)
	e.emit(events.NewAssistantPlaybackStarted(segment.ID, segment.SourceText))
}

func (e *Engine) onSegmentEnded(segment *Segment) {
	e.echo.SegmentEnded()
	if active := e.activeTurnState(); active != nil {
		active.addSpoken(segment.SourceText)
	}
}

func (e *Engine) onSegmentsAborted(pendingTexts []string) {
	e.echo.SegmentEnded()
	e.emit(events.NewAssistantPlaybackAborted(pendingTexts))
}

// onPlaybackIdle fires when the last queued segment finished playing,
// which completes the turn.
func (e *Engine) onPlaybackIdle() {
	active := e.activeTurnState()
	if active == nil || !e.tokens.IsCurrent(active.token) {
		return
	}
	e.setActiveTurn(nil)

	transcript := active.spokenText()
	e.turns.append(llms.TurnRoleAssistant, transcript, false, active.startedAt)
	e.detector.SetGated(false)
	e.emit(events.NewAssistantPlaybackEnded(transcript))
	e.emit(events.NewTurnCompleted(active.turnID))
	e.setPhase(PhaseListening)
}
