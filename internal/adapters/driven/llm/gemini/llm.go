// Package gemini provides an LLM service adapter using the Google
// Generative Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "gemini-1.5-flash-latest"
	DefaultLLMTimeout = 120 * time.Second
)

// maxAttempts bounds 429 retries per logical request. Each attempt
// draws a fresh key from the ring.
const maxAttempts = 3

// LLMConfig holds configuration for the Gemini LLM service.
type LLMConfig struct {
	// BaseURL is the Generative Language API base URL.
	BaseURL string

	// Model is the LLM model to use (default: gemini-1.5-flash-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using the Gemini API.
// API keys come from a KeyRing so free-tier per-key quotas can be
// pooled across several keys.
type LLMService struct {
	client  *http.Client
	keys    driven.KeyRing
	baseURL string
	model   string
}

// part is a single text fragment in a content block.
type part struct {
	Text string `json:"text"`
}

// content is one turn in the Gemini conversation format.
// Role is "user" or "model".
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// generationConfig holds generation parameters.
type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     float64  `json:"temperature,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// generateContentRequest is the generateContent request format.
type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// generateContentResponse is the generateContent response format.
type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(keys driven.KeyRing, cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		keys:    keys,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.StopWords) > 0 {
		req.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
			StopSequences:   opts.StopWords,
		}
	}

	return s.generateContent(ctx, req)
}

// Chat conducts a multi-turn conversation. A leading system message is
// sent as the system instruction; assistant turns map to the "model" role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := generateContentRequest{}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			req.SystemInstruction = &content{Parts: []part{{Text: msg.Content}}}
		case "assistant":
			req.Contents = append(req.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	return s.generateContent(ctx, req)
}

// generateContent sends a request, rotating keys and backing off
// rate-limited ones.
func (s *LLMService) generateContent(ctx context.Context, payload generateContentRequest) (string, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := s.keys.Next(ctx)
		if err != nil {
			return "", err
		}

		url := s.baseURL + "/models/" + s.model + ":generateContent?key=" + key
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return "", fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			s.keys.ReportRateLimited(key, retryAfter)
			lastErr = fmt.Errorf("%w: gemini key ...%s", domain.ErrRateLimited, tail(key))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
		}

		var genResp generateContentResponse
		if err := json.Unmarshal(body, &genResp); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("gemini returned no candidates")
		}

		var text string
		for _, p := range genResp.Candidates[0].Content.Parts {
			text += p.Text
		}
		return text, nil
	}

	return "", lastErr
}

// tail returns the last four characters of a key for log-safe display.
func tail(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable with a one-token generation.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
