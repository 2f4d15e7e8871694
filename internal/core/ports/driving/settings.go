package driving

import "github.com/glossa-labs/glossa-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Save validates and persists application settings.
	Save(settings *domain.Settings) error

	// Set updates a single dotted key (e.g. "retrieval.dense_weight")
	// and persists the result if it still validates.
	Set(key, value string) error

	// SetAPIKeys replaces the embedding provider's API keys.
	SetAPIKeys(keys []string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
