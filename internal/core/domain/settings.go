package domain

import (
	"errors"
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// FusionMethod defines how dense and sparse scores are combined.
type FusionMethod string

// Available fusion methods.
const (
	// FusionWeighted min-max normalises each method's scores, then
	// combines them as a weighted sum.
	FusionWeighted FusionMethod = "weighted"

	// FusionRRF combines by reciprocal rank instead of score.
	FusionRRF FusionMethod = "rrf"
)

// IsValid returns true if the fusion method is recognised.
func (f FusionMethod) IsValid() bool {
	return f == FusionWeighted || f == FusionRRF
}

// String returns the string representation.
func (f FusionMethod) String() string {
	return string(f)
}

// Description returns a human-readable description of the method.
func (f FusionMethod) Description() string {
	switch f {
	case FusionWeighted:
		return "Weighted (normalised score sum)"
	case FusionRRF:
		return "Reciprocal Rank Fusion"
	default:
		return unknownDescription
	}
}

// RerankBackend defines which scorer reorders merged results.
type RerankBackend string

// Available rerank backends.
const (
	// RerankLLM scores passages with the configured LLM.
	RerankLLM RerankBackend = "llm"

	// RerankLexical scores passages by query term overlap.
	// Deterministic and offline.
	RerankLexical RerankBackend = "lexical"
)

// IsValid returns true if the backend is recognised.
func (b RerankBackend) IsValid() bool {
	return b == RerankLLM || b == RerankLexical
}

// String returns the string representation.
func (b RerankBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKeys are the provider API keys. More than one enables
	// round-robin rotation under rate pressure.
	APIKeys []string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && len(e.APIKeys) == 0 {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector database configuration.
type VectorStoreSettings struct {
	// URL is the Qdrant endpoint.
	URL string

	// APIKey authenticates against Qdrant. Empty for local instances.
	APIKey string

	// Collection is the Qdrant collection name.
	Collection string
}

// RetrievalSettings holds the hybrid retrieval configuration.
type RetrievalSettings struct {
	// TopK is the number of results a retrieval pass returns.
	TopK int

	// FusionMethod selects how dense and sparse scores combine.
	FusionMethod FusionMethod

	// DenseWeight scales the normalised dense score.
	DenseWeight float64

	// SparseWeight scales the normalised sparse score.
	SparseWeight float64

	// EnableSparse toggles the BM25 leg.
	EnableSparse bool

	// EnableRerank toggles the rerank stage.
	EnableRerank bool

	// RerankBackend selects the rerank scorer.
	RerankBackend RerankBackend

	// RerankCandidates caps how many merged results enter reranking.
	RerankCandidates int

	// EnableDecomposition toggles query decomposition.
	EnableDecomposition bool

	// MaxSubQueries caps the decomposed query list, original included.
	MaxSubQueries int

	// EnableMetadataFilter toggles filter extraction.
	EnableMetadataFilter bool
}

// IngestSettings holds the ingestion pipeline configuration.
type IngestSettings struct {
	// DataDir is the root for incoming/, processing/ and the
	// metadata database.
	DataDir string

	// ChunkSize is the chunk length in runes.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in runes.
	ChunkOverlap int

	// EnableLLMCleanup runs extracted text through the LLM to fix
	// OCR artefacts before chunking.
	EnableLLMCleanup bool

	// RateLimitRPM caps embedding requests per minute per API key.
	RateLimitRPM int
}

// Settings holds all application settings.
type Settings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM is the primary generation provider.
	LLM LLMSettings

	// LLMFallback answers when the primary fails. Optional.
	LLMFallback LLMSettings

	// VectorStore holds vector database settings.
	VectorStore VectorStoreSettings

	// Retrieval holds hybrid retrieval settings.
	Retrieval RetrievalSettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings

	// RequestTimeout bounds individual calls to external services.
	RequestTimeout time.Duration
}

// DefaultSettings returns settings with sensible defaults.
// API keys are left unconfigured; users supply them via settings
// set-keys or the environment.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderGemini,
			Model:      "text-embedding-004",
			Dimensions: 768,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "deepseek-r1:1.5b",
			BaseURL:  "http://localhost:11434",
		},
		LLMFallback: LLMSettings{
			Provider: AIProviderGemini,
			Model:    "gemini-1.5-flash-latest",
		},
		VectorStore: VectorStoreSettings{
			URL:        "http://localhost:6333",
			Collection: "multilingual_docs",
		},
		Retrieval: RetrievalSettings{
			TopK:                 5,
			FusionMethod:         FusionWeighted,
			DenseWeight:          0.6,
			SparseWeight:         0.4,
			EnableSparse:         true,
			EnableRerank:         true,
			RerankBackend:        RerankLLM,
			RerankCandidates:     30,
			EnableDecomposition:  true,
			MaxSubQueries:        5,
			EnableMetadataFilter: true,
		},
		Ingest: IngestSettings{
			ChunkSize:    500,
			ChunkOverlap: 65,
			RateLimitRPM: 90,
		},
		RequestTimeout: 60 * time.Second,
	}
}

// Validate checks the settings for configuration errors. Failures here
// abort startup; nothing in this list is recoverable at query time.
func (s Settings) Validate() error {
	var errs []error

	if !s.Embedding.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("embedding provider %q: %w", s.Embedding.Provider, ErrInvalidConfig))
	}
	if s.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("embedding dimensions %d must be positive: %w", s.Embedding.Dimensions, ErrInvalidConfig))
	}
	if !s.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("llm provider %q: %w", s.LLM.Provider, ErrInvalidConfig))
	}
	if s.LLMFallback.Provider != "" && !s.LLMFallback.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("llm fallback provider %q: %w", s.LLMFallback.Provider, ErrInvalidConfig))
	}
	if s.VectorStore.URL == "" {
		errs = append(errs, fmt.Errorf("vector store URL is empty: %w", ErrInvalidConfig))
	}
	if s.VectorStore.Collection == "" {
		errs = append(errs, fmt.Errorf("vector store collection is empty: %w", ErrInvalidConfig))
	}

	r := s.Retrieval
	if r.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval top_k %d must be positive: %w", r.TopK, ErrInvalidConfig))
	}
	if !r.FusionMethod.IsValid() {
		errs = append(errs, fmt.Errorf("fusion method %q: %w", r.FusionMethod, ErrInvalidConfig))
	}
	if r.DenseWeight < 0 || r.SparseWeight < 0 {
		errs = append(errs, fmt.Errorf("fusion weights must be non-negative: %w", ErrInvalidConfig))
	}
	if r.DenseWeight+r.SparseWeight <= 0 {
		errs = append(errs, fmt.Errorf("fusion weights must not both be zero: %w", ErrInvalidConfig))
	}
	if r.EnableRerank && !r.RerankBackend.IsValid() {
		errs = append(errs, fmt.Errorf("rerank backend %q: %w", r.RerankBackend, ErrInvalidConfig))
	}
	if r.RerankCandidates < r.TopK {
		errs = append(errs, fmt.Errorf("rerank candidates %d must be >= top_k %d: %w", r.RerankCandidates, r.TopK, ErrInvalidConfig))
	}
	if r.MaxSubQueries < 1 {
		errs = append(errs, fmt.Errorf("max sub-queries %d must be at least 1: %w", r.MaxSubQueries, ErrInvalidConfig))
	}

	i := s.Ingest
	if i.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk size %d must be positive: %w", i.ChunkSize, ErrInvalidConfig))
	}
	if i.ChunkOverlap < 0 || i.ChunkOverlap >= i.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk overlap %d must be in [0, chunk size): %w", i.ChunkOverlap, ErrInvalidConfig))
	}
	if i.RateLimitRPM <= 0 {
		errs = append(errs, fmt.Errorf("rate limit %d rpm must be positive: %w", i.RateLimitRPM, ErrInvalidConfig))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "text-embedding-004",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-1.5-flash-latest",
		AIProviderOllama:    "deepseek-r1:1.5b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"text-embedding-004": 768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
