package openai

import (
	"context"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

const defaultModel = "gpt-4o-mini"

// Client binds an API key and model so callers can prompt without
// threading credentials through every call site.
type Client struct {
	apiKey string
	model  string
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey: apiKey,
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) PromptWithStream(ctx context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream {
	return PromptWithStream(ctx, c.apiKey, c.model, prompt, "", opts...)
}

// PromptWithStructure decodes the model's answer into outputSchema,
// which must be a non-nil pointer.
func (c *Client) PromptWithStructure(ctx context.Context, prompt string, outputSchema any, opts ...llms.StructuredPromptOption) error {
	_, err := PromptJSONSchema(ctx, c.apiKey, c.model, prompt, "", outputSchema, opts...)
	return err
}
