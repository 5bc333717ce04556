package llms

type BaseOptions struct {
	Instructions string
	Turns        []Turn
}

type StreamingPromptOptions struct {
	BaseOptions
}

type StructuredPromptOptions struct {
	BaseOptions
}

type StreamingPromptOption interface {
	ApplyToStreaming(*StreamingPromptOptions)
}

type StructuredPromptOption interface {
	ApplyToStructured(*StructuredPromptOptions)
}

// PromptOption applies to both streaming and structured prompts.
type PromptOption func(*BaseOptions)

func (f PromptOption) ApplyToStreaming(o *StreamingPromptOptions) {
	f(&o.BaseOptions)
}

func (f PromptOption) ApplyToStructured(o *StructuredPromptOptions) {
	f(&o.BaseOptions)
}

// WithSystemPrompt sets the system prompt. Repeating this option
// overwrites the previous system prompt.
func WithSystemPrompt(prompt string) PromptOption {
	return func(opts *BaseOptions) {
		opts.Instructions = prompt
	}
}

// WithTurns adds conversation turns to the prompt context. Repeating
// this option sequentially adds more turns.
func WithTurns(turns ...Turn) PromptOption {
	return func(opts *BaseOptions) {
		opts.Turns = append(opts.Turns, turns...)
	}
}
