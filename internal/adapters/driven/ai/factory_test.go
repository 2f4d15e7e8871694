package ai

import (
	"testing"

	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/keyring"
	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "gemini provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				APIKeys:  []string{"test-key-1", "test-key-2"},
				Model:    "text-embedding-004",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "gemini without keys returns nil",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				Model:    "text-embedding-004",
			},
			wantNil: true,
			wantErr: false, // no keys means not configured
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKeys:  []string{"test-key"},
				Model:    "text-embedding-3-small",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKeys:  []string{"test-key"},
			},
			wantNil:     true,
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKeys:  []string{"test-key"},
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
				svc.Close()
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "gemini provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "gemini-1.5-flash-latest",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "deepseek-r1:1.5b",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
				svc.Close()
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestValidateEmbeddingConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantErr:  false,
		},
		{
			name: "anthropic returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKeys:  []string{"test-key"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingConfig(tt.settings)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateLLMConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantErr:  false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLLMConfig(tt.settings)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "anthropic returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKeys:  []string{"test-key"},
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateEmbeddingService(tt.settings, nil)

			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantNil && svc != nil {
				t.Error("expected nil service")
				svc.Close()
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateAndValidateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateLLMService(tt.settings, nil)

			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantNil && svc != nil {
				t.Error("expected nil service")
				svc.Close()
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestInitResult_Close_AllServices(t *testing.T) {
	// Create a result with every service populated; ollama needs no network
	// for construction.
	result := &InitResult{}

	result.EmbeddingService = createOllamaEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	})
	result.LLMService = createOllamaLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "deepseek-r1:1.5b",
	})
	result.FallbackLLM = createGeminiLLM(&domain.LLMSettings{
		Provider: domain.AIProviderGemini,
		APIKey:   "test-key",
		Model:    "gemini-1.5-flash-latest",
	}, nil)

	// Close should not panic and should close all services
	result.Close()
}

func TestInitialise_NothingConfigured(t *testing.T) {
	result := Initialise(domain.Settings{}, nil)
	defer result.Close()

	if result.EmbeddingService != nil {
		t.Error("expected nil embedding service")
	}
	if result.LLMService != nil {
		t.Error("expected nil LLM service")
	}
	if result.FallbackLLM != nil {
		t.Error("expected nil fallback LLM")
	}
	if !result.SparseOnly {
		t.Error("expected sparse-only retrieval without an embedding service")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unconfigured providers should not warn, got %v", result.Warnings)
	}
}

func TestCreateGeminiEmbedding_SharedRing(t *testing.T) {
	ring := newTestRing("pool-key-1", "pool-key-2")

	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderGemini,
		APIKeys:  []string{"own-key"},
		Model:    "text-embedding-004",
	}

	svc := createGeminiEmbedding(settings, ring)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if svc.Dimensions() != 768 {
		t.Errorf("expected 768 dimensions for text-embedding-004, got %d", svc.Dimensions())
	}
}

func TestCreateOllamaEmbedding_DimensionLookup(t *testing.T) {
	// Model size comes from the known-model table when settings leave it zero.
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "mxbai-embed-large",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if svc.Dimensions() != 1024 {
		t.Errorf("expected 1024 dimensions for mxbai-embed-large, got %d", svc.Dimensions())
	}
}

func TestCreateOllamaEmbedding_UnknownModel(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "custom-model-unknown",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOpenAIEmbedding_Success(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		APIKeys:  []string{"test-key"},
		BaseURL:  "https://api.openai.com/v1",
		Model:    "text-embedding-3-small",
	}

	svc, err := createOpenAIEmbedding(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateAnthropicLLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "test-key",
		Model:    "claude-3-5-sonnet-latest",
	}

	svc, err := createAnthropicLLM(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOpenAILLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "gpt-4o-mini",
	}

	svc, err := createOpenAILLM(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOllamaLLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "deepseek-r1:1.5b",
	}

	svc := createOllamaLLM(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

// newTestRing builds a key ring for factory tests.
func newTestRing(keys ...string) driven.KeyRing {
	return keyring.New(keyring.Config{Keys: keys})
}

// contains checks if s contains substr.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
