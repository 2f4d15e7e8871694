// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/glossa-labs/glossa-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/glossa-labs/glossa-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/glossa-labs/glossa-cli/internal/adapters/driven/embedding/openai"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/keyring"
	anthropicllm "github.com/glossa-labs/glossa-cli/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/glossa-labs/glossa-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/glossa-labs/glossa-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/glossa-labs/glossa-cli/internal/adapters/driven/llm/openai"
	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Primary generation provider.
	FallbackLLM      driven.LLMService // Answers when the primary fails. May be nil.
	Warnings         []string          // Non-fatal issues that caused degradation.
	SparseOnly       bool              // True if embeddings are unavailable and retrieval is sparse-only.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.FallbackLLM != nil {
		r.FallbackLLM.Close()
	}
}

// Initialise creates the AI services for a run, degrading rather than
// failing: a missing embedding service disables the dense retrieval leg,
// a missing LLM disables decomposition, reranking and generation. The
// geminiKeys ring is shared by every Gemini-backed service so the key
// pool rotates globally; it may be nil when Gemini is not in play.
func Initialise(settings domain.Settings, geminiKeys driven.KeyRing) *InitResult {
	r := &InitResult{}

	emb, err := CreateAndValidateEmbeddingService(&settings.Embedding, geminiKeys)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("embedding service unavailable, dense retrieval disabled: %v", err))
	}
	r.EmbeddingService = emb
	r.SparseOnly = emb == nil

	llm, err := CreateAndValidateLLMService(&settings.LLM, geminiKeys)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("LLM unavailable, falling back to retrieval-only answers: %v", err))
	}
	r.LLMService = llm

	fallback, err := CreateAndValidateLLMService(&settings.LLMFallback, geminiKeys)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("fallback LLM unavailable: %v", err))
	}
	r.FallbackLLM = fallback

	return r
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings, geminiKeys driven.KeyRing) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings, geminiKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'glossa settings show' to check configuration",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'glossa settings show' to check configuration",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings, geminiKeys driven.KeyRing) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings, geminiKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'glossa settings show' to check configuration",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'glossa settings show' to check configuration",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for the settings commands to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings, nil)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for the settings commands to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings, nil)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured. geminiKeys supplies the shared
// Gemini key ring; nil builds a private ring from the settings' own keys.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, geminiKeys driven.KeyRing) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiEmbedding(settings, geminiKeys), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use gemini, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured. geminiKeys supplies the shared
// Gemini key ring; nil builds a private ring from the settings' own key.
func CreateLLMService(settings *domain.LLMSettings, geminiKeys driven.KeyRing) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return createGeminiLLM(settings, geminiKeys), nil

	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createGeminiEmbedding creates a Gemini embedding service.
func createGeminiEmbedding(settings *domain.EmbeddingSettings, keys driven.KeyRing) driven.EmbeddingService {
	if keys == nil || keys.Len() == 0 {
		keys = keyring.New(keyring.Config{Keys: settings.APIKeys})
	}

	return geminiembed.NewEmbeddingService(keys, geminiembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: embeddingDimensions(settings),
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: embeddingDimensions(settings),
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     firstKey(settings.APIKeys),
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: embeddingDimensions(settings),
	})
}

// createGeminiLLM creates a Gemini LLM service.
func createGeminiLLM(settings *domain.LLMSettings, keys driven.KeyRing) driven.LLMService {
	if keys == nil || keys.Len() == 0 {
		keys = keyring.New(keyring.Config{Keys: []string{settings.APIKey}})
	}

	return geminillm.NewLLMService(keys, geminillm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// embeddingDimensions resolves the vector size from settings, falling
// back to the known size for the model. Zero lets the adapter default apply.
func embeddingDimensions(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}

// firstKey returns the first key of a pool, or empty.
func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
