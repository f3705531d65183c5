package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMRateLimit     = "llm.requests_per_second"
	keyParserURL        = "parser.url"
	keyParserTimeout    = "parser.timeout"
	keyGenQuestions     = "generation.questions_per_chunk"
	keyGenChunkSize     = "generation.chunk_size"
	keyGenFileWorkers   = "generation.file_workers"
	keyGenAnswerWorkers = "generation.answer_workers"
	keyGenMaxAttempts   = "generation.max_attempts"
	keyOutputDir        = "output.dir"
	keyOutputFileName   = "output.file_name"
	keyPipelineProcs    = "pipeline.processors"
)

// defaultOllamaURL is used when switching to a local provider without
// an explicit endpoint.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
// Values resolve environment first, then the config file, then compiled
// defaults. Writes always target the config file.
type SettingsService struct {
	fileStore   driven.ConfigStore
	envStore    driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// envStore and aiValidator may be nil.
func NewSettingsService(fileStore, envStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		fileStore:   fileStore,
		envStore:    envStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings with all layers applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			APIKey:            s.getString(keyLLMAPIKey, ""),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			RequestsPerSecond: s.getFloat(keyLLMRateLimit, defaults.LLM.RequestsPerSecond),
		},
		Parser: domain.ParserSettings{
			URL:     s.getString(keyParserURL, defaults.Parser.URL),
			Timeout: s.getDuration(keyParserTimeout, defaults.Parser.Timeout),
		},
		Generation: domain.GenerationSettings{
			QuestionsPerChunk: s.getInt(keyGenQuestions, defaults.Generation.QuestionsPerChunk),
			ChunkSize:         s.getInt(keyGenChunkSize, defaults.Generation.ChunkSize),
			FileWorkers:       s.getInt(keyGenFileWorkers, defaults.Generation.FileWorkers),
			AnswerWorkers:     s.getInt(keyGenAnswerWorkers, defaults.Generation.AnswerWorkers),
			MaxAttempts:       s.getInt(keyGenMaxAttempts, defaults.Generation.MaxAttempts),
		},
		Output: domain.OutputSettings{
			Dir:      s.getString(keyOutputDir, defaults.Output.Dir),
			FileName: s.getString(keyOutputFileName, defaults.Output.FileName),
		},
		Pipeline: s.pipelineConfig(),
	}

	return settings, nil
}

// Save persists application settings to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.fileStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.fileStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.fileStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.fileStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.fileStore.Set(keyLLMTemperature, settings.LLM.Temperature); err != nil {
		return fmt.Errorf("save llm temperature: %w", err)
	}
	if err := s.fileStore.Set(keyLLMMaxTokens, settings.LLM.MaxTokens); err != nil {
		return fmt.Errorf("save llm max_tokens: %w", err)
	}
	if err := s.fileStore.Set(keyLLMRateLimit, settings.LLM.RequestsPerSecond); err != nil {
		return fmt.Errorf("save llm requests_per_second: %w", err)
	}

	// Save parser settings
	if err := s.fileStore.Set(keyParserURL, settings.Parser.URL); err != nil {
		return fmt.Errorf("save parser url: %w", err)
	}
	if err := s.fileStore.Set(keyParserTimeout, settings.Parser.Timeout.String()); err != nil {
		return fmt.Errorf("save parser timeout: %w", err)
	}

	// Save generation settings
	if err := s.fileStore.Set(keyGenQuestions, settings.Generation.QuestionsPerChunk); err != nil {
		return fmt.Errorf("save questions per chunk: %w", err)
	}
	if err := s.fileStore.Set(keyGenChunkSize, settings.Generation.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.fileStore.Set(keyGenFileWorkers, settings.Generation.FileWorkers); err != nil {
		return fmt.Errorf("save file workers: %w", err)
	}
	if err := s.fileStore.Set(keyGenAnswerWorkers, settings.Generation.AnswerWorkers); err != nil {
		return fmt.Errorf("save answer workers: %w", err)
	}
	if err := s.fileStore.Set(keyGenMaxAttempts, settings.Generation.MaxAttempts); err != nil {
		return fmt.Errorf("save max attempts: %w", err)
	}

	// Save output settings
	if err := s.fileStore.Set(keyOutputDir, settings.Output.Dir); err != nil {
		return fmt.Errorf("save output dir: %w", err)
	}
	if err := s.fileStore.Set(keyOutputFileName, settings.Output.FileName); err != nil {
		return fmt.Errorf("save output file_name: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	switched := provider != settings.LLM.Provider
	settings.LLM.Provider = provider

	// Set model - use provided, keep current on a same-provider update,
	// fall back to the provider default on a switch.
	if model != "" {
		settings.LLM.Model = model
	} else if switched {
		if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Switching provider resets the endpoint. A same-provider update keeps
	// the configured URL so OpenAI-compatible endpoints survive model changes.
	if switched {
		if provider.IsLocal() {
			settings.LLM.BaseURL = defaultOllamaURL
		} else {
			settings.LLM.BaseURL = ""
		}
	}
	if provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetParser configures the remote parsing service.
// An empty URL disables remote parsing.
func (s *SettingsService) SetParser(parserURL string, timeout time.Duration) error {
	if parserURL != "" {
		parsed, err := url.Parse(parserURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("invalid parser URL: %s", parserURL)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Parser.URL = parserURL
	if timeout > 0 {
		settings.Parser.Timeout = timeout
	}

	return s.Save(settings)
}

// SetGeneration updates questions-per-chunk and chunk size.
func (s *SettingsService) SetGeneration(questionsPerChunk, chunkSize int) error {
	if questionsPerChunk < 1 {
		return fmt.Errorf("questions per chunk must be at least 1, got %d", questionsPerChunk)
	}
	if chunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.QuestionsPerChunk = questionsPerChunk
	settings.Generation.ChunkSize = chunkSize

	return s.Save(settings)
}

// Validate checks if current settings can support a run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
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

// ValidateParserConfig validates the current parser configuration by probing
// its health endpoint.
func (s *SettingsService) ValidateParserConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateParser(&settings.Parser)
}

// pipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) pipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	// Try to load processors list from config
	if processors := s.getStringSlice(keyPipelineProcs); len(processors) > 0 {
		cfg.Processors = processors
	}

	// Load per-processor configs
	for _, name := range cfg.Processors {
		overrides := s.loadProcessorConfig("pipeline." + name + ".")
		if len(overrides) == 0 {
			continue
		}
		if cfg.ProcessorConfigs == nil {
			cfg.ProcessorConfigs = make(map[string]map[string]any)
		}
		// Merge with existing defaults
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range overrides {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	// Check common processor config keys
	knownKeys := []string{"chunk_size"}
	for _, key := range knownKeys {
		fullKey := prefix + key
		for _, store := range s.stores() {
			if val, exists := store.Get(fullKey); exists {
				cfg[key] = val
				break
			}
		}
	}

	return cfg
}

// Helper methods for reading config with layering and defaults.

// stores returns the lookup chain, highest precedence first.
func (s *SettingsService) stores() []driven.ConfigStore {
	chain := make([]driven.ConfigStore, 0, 2)
	if s.envStore != nil {
		chain = append(chain, s.envStore)
	}
	if s.fileStore != nil {
		chain = append(chain, s.fileStore)
	}
	return chain
}

func (s *SettingsService) getString(key, defaultVal string) string {
	for _, store := range s.stores() {
		if _, exists := store.Get(key); exists {
			return store.GetString(key)
		}
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	for _, store := range s.stores() {
		if _, exists := store.Get(key); exists {
			return store.GetInt(key)
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	for _, store := range s.stores() {
		if _, exists := store.Get(key); exists {
			return store.GetFloat(key)
		}
	}
	return defaultVal
}

func (s *SettingsService) getStringSlice(key string) []string {
	for _, store := range s.stores() {
		if _, exists := store.Get(key); exists {
			return store.GetStringSlice(key)
		}
	}
	return nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(key, "")
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// getDuration reads a duration stored either as a Go duration string
// ("5m", "300s") or as a whole number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	for _, store := range s.stores() {
		if _, exists := store.Get(key); !exists {
			continue
		}
		if str := store.GetString(key); str != "" {
			if d, err := time.ParseDuration(str); err == nil && d > 0 {
				return d
			}
		}
		if secs := store.GetInt(key); secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return defaultVal
	}
	return defaultVal
}
