package driving

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// Pipeline runs the document-to-dataset conversion.
type Pipeline interface {
	// Run processes a file or directory and returns the run report.
	// The run completes with a report even when individual files fail;
	// only startup validation and output-write failures return an error.
	Run(ctx context.Context, input string, opts RunOptions) (*domain.Report, error)

	// Status returns a snapshot of the active run for progress polling.
	Status() RunStatus

	// SupportedFormats returns the formats the pipeline can process.
	SupportedFormats() []domain.FileFormat
}

// RunOptions configures one pipeline run.
type RunOptions struct {
	// OutputPath overrides the configured dataset path when non-empty.
	OutputPath string

	// Overwrite truncates existing output instead of appending.
	Overwrite bool

	// OnEvent receives progress events when non-nil.
	// The callback must not block; it is invoked from worker goroutines.
	OnEvent func(domain.RunEvent)
}

// RunStatus is a point-in-time view of the active run.
type RunStatus struct {
	// Running indicates a run is in progress.
	Running bool

	// TotalFiles is the discovered file count.
	TotalFiles int

	// FilesDone counts files that reached a terminal state.
	FilesDone int

	// PairsWritten counts QA pairs appended so far.
	PairsWritten int

	// ErrorCount counts file and chunk failures so far.
	ErrorCount int
}
