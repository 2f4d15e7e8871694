package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/storage/memory"
	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
	assert.Equal(t, defaults.Retrieval.FusionMethod, settings.Retrieval.FusionMethod)
	assert.Equal(t, defaults.Retrieval.DenseWeight, settings.Retrieval.DenseWeight)
	assert.Equal(t, defaults.Ingest.ChunkSize, settings.Ingest.ChunkSize)
	assert.Equal(t, defaults.Ingest.ChunkOverlap, settings.Ingest.ChunkOverlap)
	assert.Equal(t, defaults.RequestTimeout, settings.RequestTimeout)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("embedding.api_keys", []string{"sk-one", "sk-two"})
	_ = store.Set("retrieval.fusion_method", "rrf")
	_ = store.Set("retrieval.top_k", 10)
	_ = store.Set("ingest.data_dir", "/srv/docs")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, []string{"sk-one", "sk-two"}, settings.Embedding.APIKeys)
	assert.Equal(t, domain.FusionRRF, settings.Retrieval.FusionMethod)
	assert.Equal(t, 10, settings.Retrieval.TopK)
	assert.Equal(t, "/srv/docs", settings.Ingest.DataDir)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("retrieval.fusion_method", "invalid_method")
	_ = store.Set("retrieval.rerank_backend", "invalid_backend")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Retrieval.FusionMethod, settings.Retrieval.FusionMethod)
	assert.Equal(t, defaults.Retrieval.RerankBackend, settings.Retrieval.RerankBackend)
}

func TestSettingsService_Get_ExplicitZeroOverlap(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("ingest.chunk_overlap", 0)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	// Zero overlap is a deliberate choice, not an absent key.
	assert.Equal(t, 0, settings.Ingest.ChunkOverlap)
}

func TestSettingsService_Get_ExplicitFalseToggles(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("retrieval.enable_sparse", false)
	_ = store.Set("retrieval.enable_rerank", false)
	_ = store.Set("retrieval.enable_decomposition", false)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.False(t, settings.Retrieval.EnableSparse)
	assert.False(t, settings.Retrieval.EnableRerank)
	assert.False(t, settings.Retrieval.EnableDecomposition)
}

func TestSettingsService_Get_ZeroIntFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("retrieval.top_k", 0)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().Retrieval.TopK, settings.Retrieval.TopK)
}

func TestSettingsService_Get_BadDurationFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("request_timeout", "not-a-duration")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().RequestTimeout, settings.RequestTimeout)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.APIKeys = []string{"sk-test-key"}
	settings.Embedding.Dimensions = 1536
	settings.LLM.Provider = domain.AIProviderAnthropic
	settings.LLM.Model = "claude-3-5-sonnet-latest"
	settings.LLM.APIKey = "sk-ant-test"
	settings.Retrieval.FusionMethod = domain.FusionRRF
	settings.Retrieval.TopK = 8
	settings.Ingest.DataDir = "/srv/docs"
	settings.RequestTimeout = 30 * time.Second

	err := service.Save(&settings)
	require.NoError(t, err)

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, retrieved.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", retrieved.Embedding.Model)
	assert.Equal(t, []string{"sk-test-key"}, retrieved.Embedding.APIKeys)
	assert.Equal(t, 1536, retrieved.Embedding.Dimensions)
	assert.Equal(t, domain.AIProviderAnthropic, retrieved.LLM.Provider)
	assert.Equal(t, "sk-ant-test", retrieved.LLM.APIKey)
	assert.Equal(t, domain.FusionRRF, retrieved.Retrieval.FusionMethod)
	assert.Equal(t, 8, retrieved.Retrieval.TopK)
	assert.Equal(t, "/srv/docs", retrieved.Ingest.DataDir)
	assert.Equal(t, 30*time.Second, retrieved.RequestTimeout)
}

func TestSettingsService_Save_InvalidRejected(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()
	settings.Retrieval.TopK = 0

	err := service.Save(&settings)

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	// Nothing landed in the store.
	_, exists := store.Get("retrieval.top_k")
	assert.False(t, exists)
}

func TestSettingsService_Save_EmptySecretsNotStored(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()

	err := service.Save(&settings)
	require.NoError(t, err)

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
	_, exists = store.Get("vector_store.api_key")
	assert.False(t, exists)
	_, exists = store.Get("embedding.api_keys")
	assert.False(t, exists)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		verify func(t *testing.T, s *domain.Settings)
	}{
		{
			name:  "embedding provider",
			key:   "embedding.provider",
			value: "openai",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, domain.AIProviderOpenAI, s.Embedding.Provider)
			},
		},
		{
			name:  "embedding model",
			key:   "embedding.model",
			value: "text-embedding-3-large",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, "text-embedding-3-large", s.Embedding.Model)
			},
		},
		{
			name:  "top k",
			key:   "retrieval.top_k",
			value: "12",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 12, s.Retrieval.TopK)
			},
		},
		{
			name:  "fusion method",
			key:   "retrieval.fusion_method",
			value: "rrf",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, domain.FusionRRF, s.Retrieval.FusionMethod)
			},
		},
		{
			name:  "dense weight",
			key:   "retrieval.dense_weight",
			value: "0.8",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.InDelta(t, 0.8, s.Retrieval.DenseWeight, 1e-9)
			},
		},
		{
			name:  "disable sparse",
			key:   "retrieval.enable_sparse",
			value: "false",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.False(t, s.Retrieval.EnableSparse)
			},
		},
		{
			name:  "rerank backend",
			key:   "retrieval.rerank_backend",
			value: "lexical",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, domain.RerankLexical, s.Retrieval.RerankBackend)
			},
		},
		{
			name:  "max sub queries",
			key:   "retrieval.max_sub_queries",
			value: "3",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 3, s.Retrieval.MaxSubQueries)
			},
		},
		{
			name:  "data dir",
			key:   "ingest.data_dir",
			value: "/srv/docs",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, "/srv/docs", s.Ingest.DataDir)
			},
		},
		{
			name:  "llm cleanup",
			key:   "ingest.enable_llm_cleanup",
			value: "true",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.True(t, s.Ingest.EnableLLMCleanup)
			},
		},
		{
			name:  "request timeout",
			key:   "request_timeout",
			value: "90s",
			verify: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 90*time.Second, s.RequestTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			require.NoError(t, err)

			settings, err := service.Get()
			require.NoError(t, err)
			tt.verify(t, settings)
		})
	}
}

func TestSettingsService_Set_InvalidValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad int", "retrieval.top_k", "lots"},
		{"bad float", "retrieval.dense_weight", "heavy"},
		{"bad bool", "retrieval.enable_sparse", "maybe"},
		{"bad duration", "request_timeout", "soon"},
		{"unknown key", "retrieval.nonexistent", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set_RejectsInvalidResult(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	// Parses fine, but the resulting settings tree fails validation.
	err := service.Set("retrieval.top_k", "-3")

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsService_Set_WeightsCannotBothBeZero(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("retrieval.sparse_weight", "0"))

	err := service.Set("retrieval.dense_weight", "0")

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsService_SetAPIKeys(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetAPIKeys([]string{" sk-one ", "", "sk-two"})

	require.NoError(t, err)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"sk-one", "sk-two"}, settings.Embedding.APIKeys)
}

func TestSettingsService_SetAPIKeys_Replaces(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetAPIKeys([]string{"sk-old"}))
	require.NoError(t, service.SetAPIKeys([]string{"sk-new"}))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"sk-new"}, settings.Embedding.APIKeys)
}

func TestSettingsService_SetAPIKeys_Empty(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetAPIKeys([]string{"  ", ""})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	defaults := service.GetDefaults()

	assert.Equal(t, domain.DefaultSettings(), defaults)
}

// Config store that fails Set for one key.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Save_StoreError(t *testing.T) {
	store := &failingConfigStore{
		ConfigStore: memory.NewConfigStore(),
		failOn:      "embedding.provider",
	}
	service := NewSettingsService(store, nil)

	settings := domain.DefaultSettings()

	err := service.Save(&settings)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding.provider")
}

// Mock AIConfigValidator for testing.
type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

func TestSettingsService_ValidateEmbeddingConfig_NilValidator(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.ValidateEmbeddingConfig()

	assert.NoError(t, err)
}

func TestSettingsService_ValidateEmbeddingConfig_Success(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIConfigValidator{}
	service := NewSettingsService(store, validator)

	err := service.ValidateEmbeddingConfig()

	assert.NoError(t, err)
}

func TestSettingsService_ValidateEmbeddingConfig_Error(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIConfigValidator{embedErr: assert.AnError}
	service := NewSettingsService(store, validator)

	err := service.ValidateEmbeddingConfig()

	assert.Error(t, err)
}

func TestSettingsService_ValidateLLMConfig_NilValidator(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.ValidateLLMConfig()

	assert.NoError(t, err)
}

func TestSettingsService_ValidateLLMConfig_Success(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIConfigValidator{}
	service := NewSettingsService(store, validator)

	err := service.ValidateLLMConfig()

	assert.NoError(t, err)
}

func TestSettingsService_ValidateLLMConfig_Error(t *testing.T) {
	store := memory.NewConfigStore()
	validator := &mockAIConfigValidator{llmErr: assert.AnError}
	service := NewSettingsService(store, validator)

	err := service.ValidateLLMConfig()

	assert.Error(t, err)
}
