package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKeys     = "embedding.api_keys"
	keyEmbedDims        = "embedding.dimensions"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyFallbackProvider = "llm_fallback.provider"
	keyFallbackModel    = "llm_fallback.model"
	keyFallbackBaseURL  = "llm_fallback.base_url"
	keyFallbackAPIKey   = "llm_fallback.api_key"
	keyVectorURL        = "vector_store.url"
	keyVectorAPIKey     = "vector_store.api_key"
	keyVectorCollection = "vector_store.collection"
	keyTopK             = "retrieval.top_k"
	keyFusionMethod     = "retrieval.fusion_method"
	keyDenseWeight      = "retrieval.dense_weight"
	keySparseWeight     = "retrieval.sparse_weight"
	keyEnableSparse     = "retrieval.enable_sparse"
	keyEnableRerank     = "retrieval.enable_rerank"
	keyRerankBackend    = "retrieval.rerank_backend"
	keyRerankCandidates = "retrieval.rerank_candidates"
	keyEnableDecompose  = "retrieval.enable_decomposition"
	keyMaxSubQueries    = "retrieval.max_sub_queries"
	keyEnableFilter     = "retrieval.enable_metadata_filter"
	keyDataDir          = "ingest.data_dir"
	keyChunkSize        = "ingest.chunk_size"
	keyChunkOverlap     = "ingest.chunk_overlap"
	keyLLMCleanup       = "ingest.enable_llm_cleanup"
	keyRateLimitRPM     = "ingest.rate_limit_rpm"
	keyRequestTimeout   = "request_timeout"
)

// SettingsService manages application settings on top of the config
// store. Reads fall back to defaults key by key; writes always
// validate the whole settings tree first, so a bad value never lands
// on disk.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKeys:    s.configStore.GetStringSlice(keyEmbedAPIKeys),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		LLMFallback: domain.LLMSettings{
			Provider: s.getProvider(keyFallbackProvider, defaults.LLMFallback.Provider),
			Model:    s.getString(keyFallbackModel, defaults.LLMFallback.Model),
			BaseURL:  s.configStore.GetString(keyFallbackBaseURL),
			APIKey:   s.configStore.GetString(keyFallbackAPIKey),
		},
		VectorStore: domain.VectorStoreSettings{
			URL:        s.getString(keyVectorURL, defaults.VectorStore.URL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			Collection: s.getString(keyVectorCollection, defaults.VectorStore.Collection),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:                 s.getInt(keyTopK, defaults.Retrieval.TopK),
			FusionMethod:         s.getFusionMethod(defaults.Retrieval.FusionMethod),
			DenseWeight:          s.getFloat(keyDenseWeight, defaults.Retrieval.DenseWeight),
			SparseWeight:         s.getFloat(keySparseWeight, defaults.Retrieval.SparseWeight),
			EnableSparse:         s.getBool(keyEnableSparse, defaults.Retrieval.EnableSparse),
			EnableRerank:         s.getBool(keyEnableRerank, defaults.Retrieval.EnableRerank),
			RerankBackend:        s.getRerankBackend(defaults.Retrieval.RerankBackend),
			RerankCandidates:     s.getInt(keyRerankCandidates, defaults.Retrieval.RerankCandidates),
			EnableDecomposition:  s.getBool(keyEnableDecompose, defaults.Retrieval.EnableDecomposition),
			MaxSubQueries:        s.getInt(keyMaxSubQueries, defaults.Retrieval.MaxSubQueries),
			EnableMetadataFilter: s.getBool(keyEnableFilter, defaults.Retrieval.EnableMetadataFilter),
		},
		Ingest: domain.IngestSettings{
			DataDir:          s.configStore.GetString(keyDataDir),
			ChunkSize:        s.getInt(keyChunkSize, defaults.Ingest.ChunkSize),
			ChunkOverlap:     s.getIntAllowZero(keyChunkOverlap, defaults.Ingest.ChunkOverlap),
			EnableLLMCleanup: s.getBool(keyLLMCleanup, defaults.Ingest.EnableLLMCleanup),
			RateLimitRPM:     s.getInt(keyRateLimitRPM, defaults.Ingest.RateLimitRPM),
		},
		RequestTimeout: s.getDuration(keyRequestTimeout, defaults.RequestTimeout),
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	entries := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyFallbackProvider, settings.LLMFallback.Provider.String()},
		{keyFallbackModel, settings.LLMFallback.Model},
		{keyFallbackBaseURL, settings.LLMFallback.BaseURL},
		{keyVectorURL, settings.VectorStore.URL},
		{keyVectorCollection, settings.VectorStore.Collection},
		{keyTopK, settings.Retrieval.TopK},
		{keyFusionMethod, settings.Retrieval.FusionMethod.String()},
		{keyDenseWeight, settings.Retrieval.DenseWeight},
		{keySparseWeight, settings.Retrieval.SparseWeight},
		{keyEnableSparse, settings.Retrieval.EnableSparse},
		{keyEnableRerank, settings.Retrieval.EnableRerank},
		{keyRerankBackend, settings.Retrieval.RerankBackend.String()},
		{keyRerankCandidates, settings.Retrieval.RerankCandidates},
		{keyEnableDecompose, settings.Retrieval.EnableDecomposition},
		{keyMaxSubQueries, settings.Retrieval.MaxSubQueries},
		{keyEnableFilter, settings.Retrieval.EnableMetadataFilter},
		{keyDataDir, settings.Ingest.DataDir},
		{keyChunkSize, settings.Ingest.ChunkSize},
		{keyChunkOverlap, settings.Ingest.ChunkOverlap},
		{keyLLMCleanup, settings.Ingest.EnableLLMCleanup},
		{keyRateLimitRPM, settings.Ingest.RateLimitRPM},
		{keyRequestTimeout, settings.RequestTimeout.String()},
	}
	for _, e := range entries {
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}

	// Secrets only land in the file when actually set.
	secrets := []struct {
		key   string
		value string
	}{
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyFallbackAPIKey, settings.LLMFallback.APIKey},
		{keyVectorAPIKey, settings.VectorStore.APIKey},
	}
	for _, e := range secrets {
		if e.value == "" {
			continue
		}
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.key, err)
		}
	}
	if len(settings.Embedding.APIKeys) > 0 {
		if err := s.configStore.Set(keyEmbedAPIKeys, settings.Embedding.APIKeys); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKeys, err)
		}
	}

	return nil
}

// Set updates a single dotted key and persists the result if the
// whole settings tree still validates.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := applySetting(settings, key, value); err != nil {
		return err
	}
	return s.Save(settings)
}

// SetAPIKeys replaces the embedding provider's API keys.
func (s *SettingsService) SetAPIKeys(keys []string) error {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("no keys given: %w", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Embedding.APIKeys = cleaned
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// applySetting parses the value for one dotted key into the settings
// tree. Validation happens afterwards against the whole tree, so
// cross-field rules (weights summing to zero) still hold.
//
//nolint:gocyclo // Flat key-to-field mapping.
func applySetting(settings *domain.Settings, key, value string) error {
	switch key {
	case keyEmbedProvider:
		settings.Embedding.Provider = domain.AIProvider(value)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyEmbedDims:
		return setInt(&settings.Embedding.Dimensions, key, value)
	case keyLLMProvider:
		settings.LLM.Provider = domain.AIProvider(value)
	case keyLLMModel:
		settings.LLM.Model = value
	case keyLLMBaseURL:
		settings.LLM.BaseURL = value
	case keyLLMAPIKey:
		settings.LLM.APIKey = value
	case keyFallbackProvider:
		settings.LLMFallback.Provider = domain.AIProvider(value)
	case keyFallbackModel:
		settings.LLMFallback.Model = value
	case keyFallbackBaseURL:
		settings.LLMFallback.BaseURL = value
	case keyFallbackAPIKey:
		settings.LLMFallback.APIKey = value
	case keyVectorURL:
		settings.VectorStore.URL = value
	case keyVectorAPIKey:
		settings.VectorStore.APIKey = value
	case keyVectorCollection:
		settings.VectorStore.Collection = value
	case keyTopK:
		return setInt(&settings.Retrieval.TopK, key, value)
	case keyFusionMethod:
		settings.Retrieval.FusionMethod = domain.FusionMethod(value)
	case keyDenseWeight:
		return setFloat(&settings.Retrieval.DenseWeight, key, value)
	case keySparseWeight:
		return setFloat(&settings.Retrieval.SparseWeight, key, value)
	case keyEnableSparse:
		return setBool(&settings.Retrieval.EnableSparse, key, value)
	case keyEnableRerank:
		return setBool(&settings.Retrieval.EnableRerank, key, value)
	case keyRerankBackend:
		settings.Retrieval.RerankBackend = domain.RerankBackend(value)
	case keyRerankCandidates:
		return setInt(&settings.Retrieval.RerankCandidates, key, value)
	case keyEnableDecompose:
		return setBool(&settings.Retrieval.EnableDecomposition, key, value)
	case keyMaxSubQueries:
		return setInt(&settings.Retrieval.MaxSubQueries, key, value)
	case keyEnableFilter:
		return setBool(&settings.Retrieval.EnableMetadataFilter, key, value)
	case keyDataDir:
		settings.Ingest.DataDir = value
	case keyChunkSize:
		return setInt(&settings.Ingest.ChunkSize, key, value)
	case keyChunkOverlap:
		return setInt(&settings.Ingest.ChunkOverlap, key, value)
	case keyLLMCleanup:
		return setBool(&settings.Ingest.EnableLLMCleanup, key, value)
	case keyRateLimitRPM:
		return setInt(&settings.Ingest.RateLimitRPM, key, value)
	case keyRequestTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a duration: %w", key, value, domain.ErrInvalidInput)
		}
		settings.RequestTimeout = d
	default:
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	return nil
}

func setInt(target *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer: %w", key, value, domain.ErrInvalidInput)
	}
	*target = n
	return nil
}

func setFloat(target *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number: %w", key, value, domain.ErrInvalidInput)
	}
	*target = f
	return nil
}

func setBool(target *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean: %w", key, value, domain.ErrInvalidInput)
	}
	*target = b
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes an explicit zero from an absent key.
// Chunk overlap zero is a valid configuration.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getFusionMethod(defaultVal domain.FusionMethod) domain.FusionMethod {
	val := s.configStore.GetString(keyFusionMethod)
	if val == "" {
		return defaultVal
	}
	method := domain.FusionMethod(val)
	if !method.IsValid() {
		return defaultVal
	}
	return method
}

func (s *SettingsService) getRerankBackend(defaultVal domain.RerankBackend) domain.RerankBackend {
	val := s.configStore.GetString(keyRerankBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.RerankBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
