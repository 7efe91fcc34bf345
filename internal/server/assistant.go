package server

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parleyhq/parley/internal/logger"
)

// systemPrompt frames the assistant for every chat.
const systemPrompt = "You are Parley, a helpful AI assistant. " +
	"When providing code, always format it properly with language-specific syntax."

// DefaultModel is used when PARLEY_MODEL is not set.
const DefaultModel = "gpt-4o-mini"

// Responder produces the assistant's reply for a chat, given the full history
// including the just-persisted user message.
type Responder interface {
	Reply(ctx context.Context, history []Message) (string, error)
}

// OpenAIResponder generates replies through the OpenAI chat completions API.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

var _ Responder = (*OpenAIResponder)(nil)

// NewOpenAIResponder creates a responder using the given API key and model.
// An empty model falls back to DefaultModel.
func NewOpenAIResponder(apiKey, model string) *OpenAIResponder {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIResponder{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Reply sends the chat history to the model and returns its answer.
func (r *OpenAIResponder) Reply(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		logger.Error("Assistant: completion failed: %v", err)
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// EchoResponder is the offline fallback used when no API key is configured.
// It produces a deterministic reply so the whole system can be exercised
// without network access.
type EchoResponder struct{}

var _ Responder = (*EchoResponder)(nil)

// Reply echoes the latest user message.
func (EchoResponder) Reply(_ context.Context, history []Message) (string, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			content := strings.TrimSpace(history[i].Content)
			return fmt.Sprintf("You said: %q. (No API key configured; replies are echoed locally.)", content), nil
		}
	}
	return "Hello! (No API key configured; replies are echoed locally.)", nil
}
