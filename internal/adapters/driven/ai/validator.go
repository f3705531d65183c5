package ai

import (
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateParser validates a parser configuration by probing its docs endpoint.
func (v *ConfigValidator) ValidateParser(config *domain.ParserSettings) error {
	return ValidateParserConfig(config)
}
