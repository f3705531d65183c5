package driving

import (
	"time"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// SettingsService manages application settings.
// Get resolves the full layering (defaults, config file, environment);
// Set methods persist to the config file only.
type SettingsService interface {
	// Get retrieves current application settings with all layers applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetParser configures the remote parsing service.
	// An empty URL disables remote parsing.
	SetParser(url string, timeout time.Duration) error

	// SetGeneration updates questions-per-chunk and chunk size.
	SetGeneration(questionsPerChunk, chunkSize int) error

	// Validate checks if current settings can support a run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by
	// pinging the provider.
	ValidateLLMConfig() error

	// ValidateParserConfig validates the current parser configuration by
	// probing its health endpoint.
	ValidateParserConfig() error
}
