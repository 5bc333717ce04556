// Package llm classifies barge-in utterances with a structured model
// prompt, so the engine can tell "стоп, подожди" from a follow-up
// question before deciding what to do with the interrupted turn.
package llm

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

//go:embed classifierInstr.tmpl
var interruptionClassifierSystemPrompt string

type Classification struct {
	Type string `json:"type" jsonschema:"title=Type,description=The type of interruption,enum=continuation,enum=cancellation,enum=noise,enum=new prompt"`
}

type InterruptionType string

const (
	InterruptionTypeContinuation InterruptionType = "continuation"
	InterruptionTypeCancellation InterruptionType = "cancellation"
	InterruptionTypeNoise        InterruptionType = "noise"
	InterruptionTypeNewPrompt    InterruptionType = "new prompt"
)

// StructuredLLM is the subset of a model client the classifier needs.
type StructuredLLM interface {
	PromptWithStructure(ctx context.Context, prompt string, outputSchema any, opts ...llms.StructuredPromptOption) error
}

// Classify labels an utterance captured during assistant playback.
func Classify(ctx context.Context, utterance string, llm StructuredLLM, opts ...ClassifyOption) (InterruptionType, error) {
	ctx, span := tracer.Start(ctx, "classify interruption")
	defer span.End()

	options := ClassifyOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	resp := Classification{}
	if err := llm.PromptWithStructure(ctx, utterance,
		&resp,
		llms.WithSystemPrompt(interruptionClassifierSystemPrompt),
		llms.WithTurns(options.History...),
	); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to prompt interruption classifier: %w", err)
	}

	return toInterruptionType(resp.Type)
}

func toInterruptionType(classification string) (InterruptionType, error) {
	switch classification {
	case "continuation":
		return InterruptionTypeContinuation, nil
	case "cancellation":
		return InterruptionTypeCancellation, nil
	case "noise":
		return InterruptionTypeNoise, nil
	case "new prompt":
		return InterruptionTypeNewPrompt, nil
	default:
		return "", fmt.Errorf("unknown interruption type: %s", classification)
	}
}

type ClassifyOption func(*ClassifyOptions)

type ClassifyOptions struct {
	History []llms.Turn
}

func WithHistory(history []llms.Turn) ClassifyOption {
	return func(o *ClassifyOptions) {
		o.History = history
	}
}
