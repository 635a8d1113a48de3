package llm

import (
	"context"
	"strings"

	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

// * OpenAIClient completes prompts through any OpenAI compatible chat completion endpoint
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client. An empty baseURL targets api.openai.com and an empty
// model falls back to DefaultModel.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Model() string { return c.model }

// Complete sends the system and user prompts as one chat turn and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userPrompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.Upstream("LLM completion failed", "Chat completion request to "+c.model+" failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Upstream("LLM completion failed", "The model returned no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}
