package openai

import (
	"github.com/jinzhu/copier"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

func toMessages(instructions string, turns []llms.Turn) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{
			Role:    messageRoleSystem,
			Content: instructions,
		})
	}

	var converted []message
	copier.Copy(&converted, turns)
	for _, msg := range converted {
		if msg.Content != "" {
			messages = append(messages, msg)
		}
	}
	return messages
}
