package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// MockPipeline implements driving.Pipeline for testing.
type MockPipeline struct {
	RunFunc              func(ctx context.Context, input string, opts driving.RunOptions) (*domain.Report, error)
	StatusFunc           func() driving.RunStatus
	SupportedFormatsFunc func() []domain.FileFormat
}

func (m *MockPipeline) Run(ctx context.Context, input string, opts driving.RunOptions) (*domain.Report, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, input, opts)
	}
	return &domain.Report{}, nil
}

func (m *MockPipeline) Status() driving.RunStatus {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return driving.RunStatus{}
}

func (m *MockPipeline) SupportedFormats() []domain.FileFormat {
	if m.SupportedFormatsFunc != nil {
		return m.SupportedFormatsFunc()
	}
	return domain.AllFormats()
}

func TestConfig_Validate_AllSet(t *testing.T) {
	config := &Config{
		Pipeline: &MockPipeline{},
		Input:    "/docs",
	}

	err := config.Validate()

	assert.NoError(t, err)
}

func TestConfig_Validate_MissingPipeline(t *testing.T) {
	config := &Config{
		Pipeline: nil,
		Input:    "/docs",
	}

	err := config.Validate()

	assert.ErrorIs(t, err, ErrMissingPipeline)
}

func TestConfig_Validate_MissingInput(t *testing.T) {
	config := &Config{
		Pipeline: &MockPipeline{},
		Input:    "",
	}

	err := config.Validate()

	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestConfig_Validate_OptionsAreOptional(t *testing.T) {
	config := &Config{
		Pipeline: &MockPipeline{},
		Input:    "/docs",
		Options:  driving.RunOptions{},
	}

	err := config.Validate()

	assert.NoError(t, err)
}
