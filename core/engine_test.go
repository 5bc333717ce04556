package voicechat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/audio"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/speechtotext"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/texttospeech"
)

type fakeDevice struct {
	mu         sync.Mutex
	onFrame    func(frame audio.Frame)
	sent       [][]byte
	cleared    int
	captureErr error

	blockMu   sync.Mutex
	blockMark chan struct{}
}

func (d *fakeDevice) StartCapture(_ context.Context, onFrame func(frame audio.Frame)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.captureErr != nil {
		return d.captureErr
	}
	d.onFrame = onFrame
	return nil
}

func (d *fakeDevice) SendAudio(data []byte) error {
	d.mu.Lock()
	d.sent = append(d.sent, data)
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) ClearBuffer() {
	d.mu.Lock()
	d.cleared++
	d.mu.Unlock()
}

func (d *fakeDevice) AwaitMark() error {
	d.blockMu.Lock()
	block := d.blockMark
	d.blockMu.Unlock()
	if block != nil {
		<-block
	}
	return nil
}

func (d *fakeDevice) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (d *fakeDevice) Close() {}

func (d *fakeDevice) holdPlayback() chan struct{} {
	block := make(chan struct{})
	d.blockMu.Lock()
	d.blockMark = block
	d.blockMu.Unlock()
	return block
}

func (d *fakeDevice) emitFrame(data []byte) {
	d.mu.Lock()
	onFrame := d.onFrame
	d.mu.Unlock()
	if onFrame != nil {
		onFrame(audio.NewFrame(data))
	}
}

func (d *fakeDevice) sentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func (d *fakeDevice) clearedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cleared
}

type fakeLLM struct {
	mu       sync.Mutex
	response string
	fail     bool
	prompts  []string
}

func (l *fakeLLM) PromptWithStream(_ context.Context, prompt *string, _ ...llms.StreamingPromptOption) llms.Stream {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prompt != nil {
		l.prompts = append(l.prompts, *prompt)
	}
	if l.fail {
		return &fakeStream{err: errors.New("model unavailable")}
	}
	return &fakeStream{content: l.response}
}

func (l *fakeLLM) lastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

type fakeStream struct {
	content string
	err     error
}

func (s *fakeStream) Chunks(context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		if s.err != nil {
			yield(nil, s.err)
			return
		}
		yield(fakeContentChunk{content: s.content}, nil)
	}
}

type fakeContentChunk struct {
	content string
}

func (c fakeContentChunk) FinishReason() *string { return nil }
func (c fakeContentChunk) Content() string       { return c.content }

type fakeTTS struct {
	failGenerator bool
}

func (f *fakeTTS) NewSpeechGenerator(_ context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGenerator, error) {
	if f.failGenerator {
		return nil, errors.New("synthesis backend down")
	}

	options := texttospeech.TextToSpeechOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}
	return &fakeGenerator{options: options}, nil
}

// fakeGenerator produces a fixed slab of audio per mark, synchronously.
type fakeGenerator struct {
	options texttospeech.TextToSpeechOptions
	pending string
	ended   bool
}

func (g *fakeGenerator) SendText(text string) error {
	g.pending += text
	return nil
}

func (g *fakeGenerator) Mark() error {
	if g.options.SpeechAudioCallback != nil {
		g.options.SpeechAudioCallback(make([]byte, 3200))
	}
	if g.options.SpeechMarkCallback != nil {
		g.options.SpeechMarkCallback(g.pending)
	}
	g.pending = ""
	return nil
}

func (g *fakeGenerator) EndOfText() error {
	if g.ended {
		return nil
	}
	g.ended = true
	if g.options.SpeechEndedCallback != nil {
		g.options.SpeechEndedCallback(texttospeech.SpeechEndedReport{})
	}
	return nil
}

func (g *fakeGenerator) Cancel() error {
	if g.ended {
		return nil
	}
	g.ended = true
	if g.options.SpeechEndedCallback != nil {
		g.options.SpeechEndedCallback(texttospeech.SpeechEndedReport{Cancelled: true})
	}
	return nil
}

func (g *fakeGenerator) Close() error { return nil }

type fakeBatchTranscriber struct {
	text string
}

func (b *fakeBatchTranscriber) Transcribe(_ context.Context, _ []byte, _ ...speechtotext.TranscriptionOption) (speechtotext.Result, error) {
	return speechtotext.Result{
		Text:       b.text,
		IsFinal:    true,
		Confidence: 0.9,
		Source:     speechtotext.SourceCloud,
	}, nil
}

type eventRecorder struct {
	mu       sync.Mutex
	recorded []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, event)
}

func (r *eventRecorder) count(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.recorded {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

func (r *eventRecorder) all(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, event := range r.recorded {
		if event.Kind() == kind {
			matched = append(matched, event)
		}
	}
	return matched
}

const testGreeting = "Здравствуй, начнём занятие."

type testHarness struct {
	engine   *Engine
	device   *fakeDevice
	llm      *fakeLLM
	tts      *fakeTTS
	recorder *eventRecorder
}

func newTestHarness(t *testing.T, opts ...EngineOption) *testHarness {
	t.Helper()

	harness := &testHarness{
		device:   &fakeDevice{},
		llm:      &fakeLLM{response: "Хорошо, давай пообщаемся!"},
		tts:      &fakeTTS{},
		recorder: &eventRecorder{},
	}

	engineOpts := []EngineOption{
		WithAudioDevice(harness.device),
		WithLLM(harness.llm),
		WithTextToSpeech(harness.tts),
		WithBatchTranscriber(&fakeBatchTranscriber{text: "заглушка"}),
		WithGreeting(testGreeting),
		WithEventCallback(harness.recorder.record),
	}
	engineOpts = append(engineOpts, opts...)

	engine, err := NewEngine(engineOpts...)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	engine.opts.retryBackoff = 10 * time.Millisecond
	harness.engine = engine
	return harness
}

func (h *testHarness) start(t *testing.T) {
	t.Helper()
	if err := h.engine.StartSession(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	t.Cleanup(func() { _ = h.engine.EndSession() })
}

func (h *testHarness) waitTurnsCompleted(t *testing.T, n int) {
	t.Helper()
	waitFor(t, "turns to complete", func() bool {
		return h.recorder.count(events.KindTurnCompleted) >= n
	})
}

func (h *testHarness) sayFinal(text string) {
	h.engine.onFinalResult(speechtotext.Result{
		Text:       text,
		IsFinal:    true,
		Confidence: 0.95,
		Source:     speechtotext.SourceNative,
	})
}

func TestSessionGreetsAndReturnsToListening(t *testing.T) {
	harness := newTestHarness(t)
	harness.start(t)

	harness.waitTurnsCompleted(t, 1)
	waitFor(t, "phase to return to listening", func() bool {
		return harness.engine.Snapshot().Phase == PhaseListening
	})

	if harness.device.sentCount() == 0 {
		t.Error("expected greeting audio on the device")
	}

	started := harness.recorder.all(events.KindAssistantPlaybackStarted)
	if len(started) == 0 {
		t.Fatal("expected a playback started event for the greeting")
	}
	if got := started[0].(events.AssistantPlaybackStarted).SourceText; got != testGreeting {
		t.Errorf("expected greeting %q, got %q", testGreeting, got)
	}
}

func TestUtteranceDrivesFullTurn(t *testing.T) {
	harness := newTestHarness(t)
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	harness.sayFinal("Давай поговорим о еде")

	harness.waitTurnsCompleted(t, 2)
	waitFor(t, "phase to return to listening", func() bool {
		return harness.engine.Snapshot().Phase == PhaseListening
	})

	turns := harness.engine.turns.snapshot()
	var userContent, assistantContent string
	for _, turn := range turns {
		switch turn.Role {
		case llms.TurnRoleUser:
			userContent = turn.Content
		case llms.TurnRoleAssistant:
			assistantContent = turn.Content
		}
	}
	if userContent != "Давай поговорим о еде" {
		t.Errorf("expected the user turn in the log, got %q", userContent)
	}
	if !strings.Contains(assistantContent, "пообщаемся") {
		t.Errorf("expected the spoken response in the log, got %q", assistantContent)
	}
	if harness.recorder.count(events.KindUserTranscriptFinal) != 1 {
		t.Errorf("expected exactly one final transcript event, got %d", harness.recorder.count(events.KindUserTranscriptFinal))
	}
}

func TestBargeInAbortsPlaybackAndBridgesContext(t *testing.T) {
	harness := newTestHarness(t)
	harness.llm.response = "Жил-был кот. Он любил молоко. Конец истории."
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	release := harness.device.holdPlayback()
	defer close(release)
	clearedBefore := harness.device.clearedCount()

	harness.sayFinal("Расскажи историю про кота")
	waitFor(t, "assistant to start speaking", func() bool {
		return harness.engine.Snapshot().Phase == PhaseSpeaking
	})

	harness.sayFinal("стоп подожди")

	waitFor(t, "barge-in to be recorded", func() bool {
		return harness.recorder.count(events.KindUserBargeIn) == 1
	})
	waitFor(t, "playback to be flushed", func() bool {
		return harness.device.clearedCount() > clearedBefore
	})

	if got := harness.engine.Snapshot().ActiveToken; got != 2 {
		t.Errorf("expected generation token 2 after barge-in, got %d", got)
	}
	if harness.recorder.count(events.KindAssistantPlaybackAborted) != 1 {
		t.Errorf("expected one aborted playback event, got %d", harness.recorder.count(events.KindAssistantPlaybackAborted))
	}

	waitFor(t, "interrupted assistant turn in the log", func() bool {
		for _, turn := range harness.engine.turns.snapshot() {
			if turn.Role == llms.TurnRoleAssistant && turn.Interrupted {
				return true
			}
		}
		return false
	})

	waitFor(t, "bridged prompt to reach the model", func() bool {
		prompt := harness.llm.lastPrompt()
		return strings.Contains(prompt, "перебил") && strings.Contains(prompt, "стоп подожди")
	})

	// The aborted turn must never complete behind the new one.
	if got := harness.recorder.count(events.KindTurnCompleted); got != 1 {
		t.Errorf("expected only the greeting turn completed so far, got %d", got)
	}
}

func TestEchoOfPlayingSegmentIsDropped(t *testing.T) {
	harness := newTestHarness(t)
	harness.llm.response = "Жил-был кот и пил молоко."
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	release := harness.device.holdPlayback()
	defer close(release)

	harness.sayFinal("Расскажи историю про кота")
	waitFor(t, "assistant to start speaking", func() bool {
		return harness.engine.Snapshot().Phase == PhaseSpeaking
	})

	harness.sayFinal("жил был кот и пил молоко")

	time.Sleep(100 * time.Millisecond)
	if got := harness.recorder.count(events.KindUserBargeIn); got != 0 {
		t.Errorf("expected the loopback echo to be dropped, got %d barge-ins", got)
	}
	if harness.engine.Snapshot().Phase != PhaseSpeaking {
		t.Error("expected playback to keep going through an echo")
	}
}

func TestSynthesisFailureDegradesToTextOnly(t *testing.T) {
	harness := newTestHarness(t)
	harness.tts.failGenerator = true
	harness.start(t)

	harness.waitTurnsCompleted(t, 1)

	harness.sayFinal("Давай поговорим о еде")
	harness.waitTurnsCompleted(t, 2)
	waitFor(t, "phase to return to listening", func() bool {
		return harness.engine.Snapshot().Phase == PhaseListening
	})

	if harness.device.sentCount() != 0 {
		t.Error("expected no audio on the device with synthesis down")
	}

	synthesisErrors := 0
	for _, event := range harness.recorder.all(events.KindSessionError) {
		if event.(events.SessionError).Category == string(ErrorCategorySynthesis) {
			synthesisErrors++
		}
	}
	if synthesisErrors == 0 {
		t.Error("expected a synthesis error notification")
	}

	var assistantContent string
	for _, turn := range harness.engine.turns.snapshot() {
		if turn.Role == llms.TurnRoleAssistant {
			assistantContent = turn.Content
		}
	}
	if !strings.Contains(assistantContent, "пообщаемся") {
		t.Errorf("expected the text-only response in the log, got %q", assistantContent)
	}
}

func TestModelFailureFallsBackToStockReply(t *testing.T) {
	harness := newTestHarness(t)
	harness.llm.fail = true
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	harness.sayFinal("Давай поговорим о еде")
	harness.waitTurnsCompleted(t, 2)

	finals := harness.recorder.all(events.KindAssistantResponseFinal)
	if len(finals) < 2 {
		t.Fatalf("expected response final events, got %d", len(finals))
	}
	if got := finals[len(finals)-1].(events.AssistantResponseFinal).Text; got != fallbackResponse {
		t.Errorf("expected the stock fallback reply, got %q", got)
	}

	modelErrors := 0
	for _, event := range harness.recorder.all(events.KindSessionError) {
		if event.(events.SessionError).Category == string(ErrorCategoryModel) {
			modelErrors++
		}
	}
	if modelErrors != 1 {
		t.Errorf("expected one model error notification, got %d", modelErrors)
	}
}

func TestDeniedDeviceFailsSession(t *testing.T) {
	harness := newTestHarness(t)
	harness.device.captureErr = fmt.Errorf("failed to initialize capture device: %w", audio.ErrDeviceDenied)
	harness.start(t)

	waitFor(t, "session to enter the error phase", func() bool {
		return harness.engine.Snapshot().Phase == PhaseError
	})

	deviceErrors := harness.recorder.all(events.KindSessionError)
	if len(deviceErrors) != 1 {
		t.Fatalf("expected one session error notification, got %d", len(deviceErrors))
	}
	sessionErr := deviceErrors[0].(events.SessionError)
	if sessionErr.Category != string(ErrorCategoryDevice) {
		t.Errorf("expected the device failure category, got %q", sessionErr.Category)
	}
	if !errors.Is(sessionErr.Err, audio.ErrDeviceDenied) {
		t.Errorf("expected the denied sentinel to survive wrapping, got %v", sessionErr.Err)
	}
}

func TestCapturedSpeechReachesBatchFallback(t *testing.T) {
	harness := newTestHarness(t, WithBatchTranscriber(&fakeBatchTranscriber{text: "Привет"}))
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	loud := loudFrameData(3000)
	silence := make([]byte, len(loud))
	for i := 0; i < 4; i++ {
		harness.device.emitFrame(loud)
	}
	for i := 0; i < 9; i++ {
		harness.device.emitFrame(silence)
	}

	waitFor(t, "the batch transcript to come through", func() bool {
		for _, event := range harness.recorder.all(events.KindUserTranscriptFinal) {
			final := event.(events.UserTranscriptFinal)
			if final.Transcript == "Привет" && final.Source == string(speechtotext.SourceCloud) {
				return true
			}
		}
		return false
	})
	harness.waitTurnsCompleted(t, 2)
}

func TestMutedMicrophoneDropsSpeech(t *testing.T) {
	harness := newTestHarness(t)
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	harness.engine.SetMicEnabled(false)

	loud := loudFrameData(3000)
	for i := 0; i < 5; i++ {
		harness.device.emitFrame(loud)
	}

	time.Sleep(100 * time.Millisecond)
	if got := harness.recorder.count(events.KindUserSpeechStarted); got != 0 {
		t.Errorf("expected no speech events with the microphone muted, got %d", got)
	}
}

func TestEndSessionReturnsToIdle(t *testing.T) {
	harness := newTestHarness(t)
	harness.start(t)
	harness.waitTurnsCompleted(t, 1)

	if err := harness.engine.EndSession(); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}
	if got := harness.engine.Snapshot().Phase; got != PhaseIdle {
		t.Errorf("expected idle phase after ending the session, got %q", got)
	}

	// The conversation log survives EndSession and clears on Reset.
	if len(harness.engine.turns.snapshot()) == 0 {
		t.Error("expected the conversation log to survive the session")
	}
	if err := harness.engine.Reset(); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}
	if len(harness.engine.turns.snapshot()) != 0 {
		t.Error("expected the conversation log to clear on reset")
	}
}

// loudFrameData builds 100ms of constant-amplitude linear16 audio.
func loudFrameData(amplitude int16) []byte {
	encoding := audio.GetDefaultEncodingInfo()
	samples := encoding.SampleRate / 10
	data := make([]byte, 0, samples*2)
	for i := 0; i < samples; i++ {
		data = binary.LittleEndian.AppendUint16(data, uint16(amplitude))
	}
	return data
}
