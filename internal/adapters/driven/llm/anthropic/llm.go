// Package anthropic provides an LLM service adapter using Anthropic API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// defaultMaxTokens applies when the caller leaves MaxTokens unset;
	// the Anthropic API requires an explicit budget.
	defaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Anthropic API.
type LLMService struct {
	client anthropic.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxTokens(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if len(opts.StopWords) > 0 {
		params.StopSequences = opts.StopWords
	}

	return s.send(ctx, params)
}

// Chat conducts a multi-turn conversation. A system message becomes the
// system prompt; user and assistant turns map directly.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxTokens(opts.MaxTokens),
	}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params.System = []anthropic.TextBlockParam{{Text: msg.Content}}
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	return s.send(ctx, params)
}

// send issues the API call and concatenates the text blocks of the reply.
func (s *LLMService) send(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		text += block.Text
	}
	return text, nil
}

// maxTokens applies the default budget; the API rejects zero.
func maxTokens(n int) int64 {
	if n <= 0 {
		return defaultMaxTokens
	}
	return int64(n)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable with a one-token message.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// SDK client doesn't need explicit cleanup
	return nil
}
