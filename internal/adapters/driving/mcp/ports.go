package mcp

import (
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// PipelineBuilder constructs a pipeline for one run from resolved
// settings. Rebuilt per tool call so overrides in the call arguments
// reach the LLM client.
type PipelineBuilder func(settings domain.AppSettings) (driving.Pipeline, error)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Settings resolves the layered application configuration.
	Settings driving.SettingsService

	// Runs exposes recorded run history.
	Runs driving.RunHistory

	// BuildPipeline constructs the conversion pipeline for a run.
	BuildPipeline PipelineBuilder
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	if p.BuildPipeline == nil {
		return ErrMissingPipelineBuilder
	}
	// Runs is optional: without it last_report only covers this process.
	return nil
}
