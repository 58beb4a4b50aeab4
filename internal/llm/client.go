package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dalbodeule/calbot/internal/config"
	appLog "github.com/dalbodeule/calbot/internal/log"
)

// Client answers /search queries against an OpenAI-compatible chat
// completion endpoint.
type Client struct {
	client       *openai.Client
	providerName string
	model        string
	systemPrompt string
}

// New returns nil when the search command is not fully configured; callers
// must treat a nil client as "feature disabled".
func New(cfg config.LLMConfig) *Client {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.APIURL, "/")
	}

	appLog.Info("llm search configured", "provider", cfg.ProviderName, "model", cfg.Model)
	return &Client{
		client:       openai.NewClientWithConfig(oc),
		providerName: cfg.ProviderName,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
}

// ProviderName is the display label used in command feedback.
func (c *Client) ProviderName() string { return c.providerName }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Ask sends the query with the configured system prompt and returns the
// trimmed completion text.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		appLog.Error("chat completion failed", err, "model", c.model)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
