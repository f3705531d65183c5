// Package env exposes process environment variables as a read-only
// configuration store. It layers over the file store in the settings
// service, so anything exported in the environment wins over the
// config file without ever being written back to it.
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// envKeys maps configuration keys to the environment variables that
// set them.
var envKeys = map[string]string{
	"llm.provider":                   "LLM_PROVIDER",
	"llm.api_key":                    "LLM_API_KEY",
	"llm.base_url":                   "LLM_BASE_URL",
	"llm.model":                      "LLM_MODEL",
	"llm.temperature":                "LLM_TEMPERATURE",
	"llm.max_tokens":                 "LLM_MAX_TOKENS",
	"parser.url":                     "MINERU_API_URL",
	"parser.timeout":                 "MINERU_TIMEOUT",
	"output.dir":                     "OUTPUT_DIR",
	"generation.questions_per_chunk": "QUESTIONS_PER_CHUNK",
	"generation.chunk_size":          "CHUNK_SIZE",
}

// Store reads configuration from the process environment.
type Store struct{}

// NewStore creates an environment-backed config store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves a configuration value by key.
// A variable that is unset or set to the empty string reports absent,
// so exporting FOO="" does not mask the config file.
func (s *Store) Get(key string) (any, bool) {
	envKey, ok := envKeys[key]
	if !ok {
		return nil, false
	}
	val, ok := os.LookupEnv(envKey)
	if !ok || val == "" {
		return nil, false
	}
	return val, true
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	return val.(string)
}

// GetInt retrieves an integer configuration value.
func (s *Store) GetInt(key string) int {
	str := s.GetString(key)
	if str == "" {
		return 0
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0
	}
	return n
}

// GetFloat retrieves a floating-point configuration value.
func (s *Store) GetFloat(key string) float64 {
	str := s.GetString(key)
	if str == "" {
		return 0
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return f
}

// GetBool retrieves a boolean configuration value.
func (s *Store) GetBool(key string) bool {
	str := s.GetString(key)
	if str == "" {
		return false
	}
	b, err := strconv.ParseBool(str)
	if err != nil {
		return false
	}
	return b
}

// GetStringSlice retrieves a comma-separated list value.
func (s *Store) GetStringSlice(key string) []string {
	str := s.GetString(key)
	if str == "" {
		return nil
	}

	parts := strings.Split(str, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Set is not supported; the environment belongs to the user.
func (s *Store) Set(key string, _ any) error {
	return fmt.Errorf("environment store is read-only, cannot set %q", key)
}

// Save is a no-op; there is nothing to persist.
func (s *Store) Save() error {
	return nil
}

// Load is a no-op; the environment is read live on each access.
func (s *Store) Load() error {
	return nil
}

// Path describes the configuration source.
func (s *Store) Path() string {
	return "environment"
}
