package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is any OpenAI-compatible chat-completion API
	// (OpenAI, DeepSeek, or another endpoint via base URL).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
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
	case AIProviderOpenAI:
		return "OpenAI-compatible (OpenAI, DeepSeek, ...)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature controls sampling randomness. Passed through unchanged.
	Temperature float64

	// MaxTokens caps the completion length. Passed through unchanged.
	MaxTokens int

	// RequestsPerSecond caps the LLM call rate across the whole run.
	// Zero means unlimited.
	RequestsPerSecond float64
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

// Validate checks the settings are usable for a run.
func (l LLMSettings) Validate() error {
	if !l.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, l.Provider)
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key", ErrInvalidInput, l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("%w: llm model is required", ErrInvalidInput)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f outside [0, 2]", ErrInvalidInput, l.Temperature)
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidInput)
	}
	if l.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidInput)
	}
	return nil
}

// ParserSettings holds remote structured-parser configuration.
type ParserSettings struct {
	// URL is the parse endpoint. Empty disables the remote strategy.
	URL string

	// Timeout bounds a single parse request.
	Timeout time.Duration
}

// IsConfigured returns true if a parser endpoint is set.
func (p ParserSettings) IsConfigured() bool {
	return p.URL != ""
}

// Validate checks the settings are usable for a run.
func (p ParserSettings) Validate() error {
	if p.URL != "" && p.Timeout <= 0 {
		return fmt.Errorf("%w: parser timeout must be positive", ErrInvalidInput)
	}
	return nil
}

// GenerationSettings holds chunking and QA generation configuration.
type GenerationSettings struct {
	// QuestionsPerChunk is the number of questions requested per chunk.
	QuestionsPerChunk int

	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// FileWorkers bounds how many files are processed concurrently.
	FileWorkers int

	// AnswerWorkers bounds concurrent answer calls within one file.
	AnswerWorkers int

	// MaxAttempts bounds retries for one LLM call, first try included.
	MaxAttempts int
}

// Validate checks the settings are usable for a run.
func (g GenerationSettings) Validate() error {
	if g.QuestionsPerChunk < 1 {
		return fmt.Errorf("%w: questions per chunk must be at least 1", ErrInvalidInput)
	}
	if g.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if g.FileWorkers < 1 {
		return fmt.Errorf("%w: file workers must be at least 1", ErrInvalidInput)
	}
	if g.AnswerWorkers < 1 {
		return fmt.Errorf("%w: answer workers must be at least 1", ErrInvalidInput)
	}
	if g.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidInput)
	}
	return nil
}

// OutputSettings holds dataset output configuration.
type OutputSettings struct {
	// Dir is the directory used when no explicit output path is given.
	Dir string

	// FileName is the dataset file name inside Dir.
	FileName string
}

// DefaultPath returns the dataset path derived from Dir and FileName.
func (o OutputSettings) DefaultPath() string {
	return o.Dir + "/" + o.FileName
}

// AppSettings holds all application settings.
// Resolved once at startup and immutable for the run's lifetime.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Parser holds remote parser settings.
	Parser ParserSettings

	// Generation holds chunking and generation settings.
	Generation GenerationSettings

	// Output holds dataset output settings.
	Output OutputSettings

	// Pipeline holds post-processor pipeline settings.
	Pipeline PipelineConfig
}

// Validate checks all settings groups. Failures here are fatal at startup.
func (s AppSettings) Validate() error {
	if err := s.LLM.Validate(); err != nil {
		return fmt.Errorf("llm settings: %w", err)
	}
	if err := s.Parser.Validate(); err != nil {
		return fmt.Errorf("parser settings: %w", err)
	}
	if err := s.Generation.Validate(); err != nil {
		return fmt.Errorf("generation settings: %w", err)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// The out-of-box LLM configuration targets the DeepSeek chat endpoint;
// only the API key must be supplied before the first run.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       "deepseek-chat",
			BaseURL:     "https://api.deepseek.com/v1",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Parser: ParserSettings{
			// URL left empty - remote parsing is opt-in
			Timeout: 300 * time.Second,
		},
		Generation: GenerationSettings{
			QuestionsPerChunk: 5,
			ChunkSize:         2000,
			FileWorkers:       2,
			AnswerWorkers:     4,
			MaxAttempts:       3,
		},
		Output: OutputSettings{
			Dir:      "./output",
			FileName: "sft_dataset.jsonl",
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllLLMProviders returns all providers selectable in the wizard.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultLLMModels returns the default model for each provider,
// used when the wizard switches provider without an explicit model.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOllama:    "llama3.2",
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be
// added without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// whitespace cleaning followed by boundary-aware chunking.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"cleaner", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 2000,
			},
		},
	}
}
