package voicechat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/events"
	interruptions "github.com/RockInMyHead/windexs-ai-learn-sub000/core/interruptions/llm"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/texttospeech"
)

// fallbackResponse is spoken when the model gives up on producing a
// usable answer.
const fallbackResponse = "Извини, я что-то отвлёкся. Повтори, пожалуйста, ещё раз?"

// processTurn runs one complete turn on the turn queue goroutine:
// prompt the model, synthesize the answer and queue it for playback.
func (e *Engine) processTurn(ctx context.Context, trigger turnTrigger) {
	if !e.tokens.IsCurrent(trigger.token) {
		return
	}

	ctx, span := tracer.Start(ctx, "process turn")
	defer span.End()

	turnID := uuid.NewString()
	e.emit(events.NewTurnStarted(turnID))

	var responseText string
	if trigger.greeting {
		responseText = trigger.utterance
	} else {
		e.setPhase(PhaseTranscribing)
		history := e.turns.snapshot()
		e.turns.append(llms.TurnRoleUser, trigger.utterance, false, time.Now())

		text, err := e.generateResponse(ctx, trigger, history)
		if err != nil {
			if ctx.Err() != nil || !e.tokens.IsCurrent(trigger.token) {
				e.emit(events.NewTurnCancelled())
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "response generation failed")
			e.emit(events.NewSessionError(string(ErrorCategoryModel), err))
			text = ""
		}
		responseText = strings.TrimSpace(text)
		if responseText == "" {
			responseText = fallbackResponse
		}
	}

	e.emit(events.NewAssistantResponseFinal(responseText))
	e.setPhase(PhaseAwaitingResponse)

	active := &activeTurn{
		token:        trigger.token,
		turnID:       turnID,
		responseText: responseText,
		startedAt:    time.Now(),
	}
	e.setActiveTurn(active)

	if err := e.speakResponse(ctx, trigger.token, responseText); err != nil {
		if ctx.Err() != nil || !e.tokens.IsCurrent(trigger.token) {
			e.emit(events.NewTurnCancelled())
			return
		}

		// Degrade to a text-only turn so the conversation survives a
		// broken synthesis backend.
		span.RecordError(err)
		e.emit(events.NewSessionError(string(ErrorCategorySynthesis), err))
		e.setActiveTurn(nil)
		e.turns.append(llms.TurnRoleAssistant, responseText, false, active.startedAt)
		e.emit(events.NewTurnCompleted(turnID))
		e.setPhase(PhaseListening)
	}
}

// generateResponse prompts the model with retries. Transient errors
// back off and retry; empty answers get a progressively more insistent
// rephrasing before the caller falls back to a stock reply.
func (e *Engine) generateResponse(ctx context.Context, trigger turnTrigger, history []llms.Turn) (string, error) {
	prompt := trigger.utterance
	if trigger.interrupted != nil {
		prompt = bridgedPrompt(*trigger.interrupted, trigger.utterance)
	}

	var lastErr error
	for attempt := 0; attempt < e.opts.modelRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(e.opts.retryBackoff):
			}
		}
		if !e.tokens.IsCurrent(trigger.token) {
			return "", context.Canceled
		}

		text, err := e.streamResponse(ctx, prompt, history)
		if err != nil {
			lastErr = err
			logger.Warn("model response attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}

		lastErr = nil
		prompt = rephrasedPrompt(attempt, trigger.utterance)
		logger.Warn("model returned an empty response, rephrasing", "attempt", attempt+1)
	}

	return "", lastErr
}

func (e *Engine) streamResponse(ctx context.Context, prompt string, history []llms.Turn) (string, error) {
	stream := e.opts.llm.PromptWithStream(ctx, &prompt,
		llms.WithSystemPrompt(e.opts.systemPrompt),
		llms.WithTurns(history...),
	)

	buffer := newResponseBuffer()
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			return "", err
		}
		if content, ok := chunk.(llms.StreamContentChunk); ok {
			buffer.AddChunk(content.Content())
		}
	}
	buffer.TextComplete()

	return buffer.String(), nil
}

func rephrasedPrompt(attempt int, utterance string) string {
	switch attempt {
	case 0:
		return utterance + "\n\nОтветь, пожалуйста, хотя бы одним предложением."
	default:
		return "Ученик сказал: «" + utterance + "». Обязательно дай содержательный устный ответ, одним-двумя предложениями."
	}
}

// speakResponse synthesizes the response sentence by sentence, feeding
// finished segments to the playback queue as their audio lands.
func (e *Engine) speakResponse(ctx context.Context, token uint64, responseText string) error {
	var lastErr error
	for attempt := 0; attempt <= e.opts.synthesisRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !e.tokens.IsCurrent(token) {
			return context.Canceled
		}

		if err := e.synthesizeOnce(ctx, token, responseText); err != nil {
			lastErr = err
			logger.Warn("synthesis attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		return nil
	}
	return lastErr
}

func (e *Engine) synthesizeOnce(ctx context.Context, token uint64, responseText string) error {
	var (
		audioMu      sync.Mutex
		pendingAudio []byte
	)

	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	generator, err := e.opts.tts.NewSpeechGenerator(ctx,
		texttospeech.WithEncodingInfo(e.encoding),
		texttospeech.WithSpeechAudioCallback(func(audio []byte) {
			audioMu.Lock()
			pendingAudio = append(pendingAudio, audio...)
			audioMu.Unlock()
		}),
		texttospeech.WithSpeechMarkCallback(func(markedText string) {
			audioMu.Lock()
			segmentAudio := pendingAudio
			pendingAudio = nil
			audioMu.Unlock()

			if !e.tokens.IsCurrent(token) {
				return
			}
			e.playback.Enqueue(newSegment(strings.TrimSpace(markedText), segmentAudio, e.encoding))
		}),
		texttospeech.WithSpeechEndedCallback(func(report texttospeech.SpeechEndedReport) {
			if report.Cancelled {
				finish(context.Canceled)
				return
			}
			finish(nil)
		}),
		texttospeech.WithErrorCallback(finish),
	)
	if err != nil {
		return err
	}
	defer generator.Close()

	for _, sentence := range splitSentences(responseText) {
		if !e.tokens.IsCurrent(token) {
			_ = generator.Cancel()
			return context.Canceled
		}

		e.emit(events.NewAssistantResponseSegment(sentence))
		if err := generator.SendText(sentence); err != nil {
			return err
		}
		if err := generator.Mark(); err != nil {
			return err
		}
	}
	if err := generator.EndOfText(); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = generator.Cancel()
		return ctx.Err()
	}
}

// triageBargeIn asks the classifier what the interruption meant before
// committing to a new turn. Playback is already stopped by the time it
// runs; classification only decides whether a response follows.
func (e *Engine) triageBargeIn(token uint64, text string, interrupted *llms.Turn) {
	kind, err := interruptions.Classify(context.Background(), text, e.opts.classifier,
		interruptions.WithHistory(e.turns.snapshot()),
	)
	if err != nil {
		logger.Warn("interruption classification failed, treating as new prompt", "error", err)
		kind = interruptions.InterruptionTypeNewPrompt
	}

	if !e.tokens.IsCurrent(token) {
		return
	}

	switch kind {
	case interruptions.InterruptionTypeCancellation, interruptions.InterruptionTypeNoise:
		return
	default:
		e.queue.Ingest(turnTrigger{token: token, utterance: text, interrupted: interrupted})
	}
}
