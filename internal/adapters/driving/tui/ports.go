// Package tui provides the live run dashboard for sftgen.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// Config aggregates everything the dashboard needs to drive a run.
// This provides a single injection point for dependency injection.
type Config struct {
	// Pipeline runs the document-to-dataset conversion.
	Pipeline driving.Pipeline

	// Input is the file or directory to process.
	Input string

	// Options configures the run. OnEvent is owned by the dashboard and
	// must be left nil; any callback set here is replaced.
	Options driving.RunOptions
}

// Validate ensures all required fields are set.
// Returns an error if any required field is missing.
func (c *Config) Validate() error {
	if c.Pipeline == nil {
		return ErrMissingPipeline
	}
	if c.Input == "" {
		return ErrMissingInput
	}
	return nil
}
