// Package llm wraps chat completions against Azure OpenAI or OpenAI.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/aiox-platform/travelbot/internal/config"
	"github.com/aiox-platform/travelbot/internal/metrics"
)

// ErrEmptyResponse is returned when the provider answers without choices.
var ErrEmptyResponse = errors.New("empty response from LLM")

// Schema asks the model for a JSON object matching Definition.
type Schema struct {
	Name       string
	Definition jsonschema.Definition
}

// Request is a single-turn completion: one system and one user message.
type Request struct {
	System string
	User   string
	Schema *Schema
}

// Client sends completions with a fixed model and token budget.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewClient builds a client for the configured provider.
func NewClient(cfg config.LLMConfig) *Client {
	var clientConfig openai.ClientConfig
	switch cfg.Provider {
	case config.LLMProviderAzure:
		clientConfig = openai.DefaultAzureConfig(cfg.Key, cfg.Endpoint)
		clientConfig.APIVersion = cfg.APIVersion
	default:
		clientConfig = openai.DefaultConfig(cfg.Key)
		if cfg.Endpoint != "" {
			clientConfig.BaseURL = cfg.Endpoint
		}
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Complete returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Strict: true,
				Schema: &req.Schema.Definition,
			},
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	latency := time.Since(start)
	metrics.ProviderCallDuration.WithLabelValues("llm").Observe(latency.Seconds())

	if err != nil {
		slog.Error("LLM request failed",
			"model", c.model,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	slog.Debug("LLM completion finished",
		"model", c.model,
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}
