package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a news analysis assistant. Answer using only the retrieved articles you are given."

// UnavailableMessage is returned in place of a generated answer when no
// language-model key is configured.
const UnavailableMessage = "I'm sorry, but the AI model is not available. Please check the configuration."

// Generator produces a grounded answer from an assembled prompt. The two
// variants (remote model, disabled stub) are chosen once at construction;
// callers only see the contract.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available() bool
}

// NewGenerator picks the variant: a real client when a key is configured,
// otherwise the disabled stub.
func NewGenerator(apiKey, baseURL, model string) Generator {
	if strings.TrimSpace(apiKey) == "" {
		return disabled{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	client *openai.Client
	model  string
}

func (c *Client) Available() bool { return true }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type disabled struct{}

func (disabled) Available() bool { return false }

func (disabled) Generate(context.Context, string) (string, error) {
	return UnavailableMessage, nil
}
