package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

type stubStructuredLLM struct {
	response string
	err      error

	prompt  string
	history []llms.Turn
}

func (s *stubStructuredLLM) PromptWithStructure(_ context.Context, prompt string, outputSchema any, opts ...llms.StructuredPromptOption) error {
	s.prompt = prompt
	options := llms.StructuredPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToStructured(&options)
	}
	s.history = options.Turns

	if s.err != nil {
		return s.err
	}
	outputSchema.(*Classification).Type = s.response
	return nil
}

func TestClassifyMapsModelAnswers(t *testing.T) {
	testCases := []struct {
		answer   string
		expected InterruptionType
	}{
		{answer: "continuation", expected: InterruptionTypeContinuation},
		{answer: "cancellation", expected: InterruptionTypeCancellation},
		{answer: "noise", expected: InterruptionTypeNoise},
		{answer: "new prompt", expected: InterruptionTypeNewPrompt},
	}

	for _, testCase := range testCases {
		t.Run(testCase.answer, func(t *testing.T) {
			llm := &stubStructuredLLM{response: testCase.answer}
			got, err := Classify(context.Background(), "стоп подожди", llm)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestClassifyPassesUtteranceAndHistory(t *testing.T) {
	llm := &stubStructuredLLM{response: "cancellation"}
	history := []llms.Turn{{Role: llms.TurnRoleAssistant, Content: "Давай продолжим урок"}}

	if _, err := Classify(context.Background(), "стоп подожди", llm, WithHistory(history)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if llm.prompt != "стоп подожди" {
		t.Fatalf("expected the utterance as prompt, got %q", llm.prompt)
	}
	if len(llm.history) != 1 || llm.history[0].Content != "Давай продолжим урок" {
		t.Fatalf("expected the history to be forwarded, got %+v", llm.history)
	}
}

func TestClassifyRejectsUnknownAnswer(t *testing.T) {
	llm := &stubStructuredLLM{response: "shrug"}
	if _, err := Classify(context.Background(), "что-то", llm); err == nil {
		t.Fatal("expected an error for an unknown classification")
	}
}

func TestClassifyPropagatesModelError(t *testing.T) {
	llm := &stubStructuredLLM{err: fmt.Errorf("model unavailable")}
	if _, err := Classify(context.Background(), "стоп", llm); err == nil {
		t.Fatal("expected the model error to propagate")
	}
}
