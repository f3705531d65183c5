package driven

import "github.com/datacraft-labs/sftgen-cli/internal/core/domain"

// AIConfigValidator validates provider configurations.
// Implementations verify that configurations are valid by testing
// connectivity to the underlying services.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateParser validates a remote parser configuration by probing
	// its health endpoint. Returns nil if valid or not configured.
	ValidateParser(config *domain.ParserSettings) error
}
