// Package openai talks to OpenAI-compatible completion servers such as vLLM,
// llama.cpp or Ollama, which is how a small local instruct model is served.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/interview-readiness/internal/ai"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "http://localhost:8080/v1"
	DefaultModel   = "Qwen/Qwen2.5-0.5B-Instruct"
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Params  ai.Params
	// Timeout bounds a whole request. Zero leaves only the caller's context.
	Timeout time.Duration
}

type completer interface {
	CreateCompletion(ctx context.Context, request goopenai.CompletionRequest) (goopenai.CompletionResponse, error)
}

// Client requests plain-prompt completions from the /completions endpoint.
type Client struct {
	api    completer
	model  string
	params ai.Params
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:    goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		params: cfg.Params.WithDefaults(),
	}
}

// GenerateContent requests a single sampled completion and returns its
// trimmed text. A blank completion is returned as "" so callers treat it as
// unusable output rather than a backend failure.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.api.CreateCompletion(ctx, goopenai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.params.MaxNewTokens,
		Temperature: c.params.Temperature,
		TopP:        c.params.TopP,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned by model")
	}

	return strings.TrimSpace(resp.Choices[0].Text), nil
}

func (c *Client) Model() string {
	return c.model
}
