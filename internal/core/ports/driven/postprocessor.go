package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// PostProcessor processes extracted text to produce chunks.
// PostProcessors are chained in a pipeline (e.g., cleaning, chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes extracted text and returns chunks.
	// If the processor modifies text (e.g., cleaning), it mutates the
	// extracted text and passes chunks through unchanged.
	// If the processor creates chunks (e.g., chunker), it receives nil
	// and returns new chunks.
	Process(ctx context.Context, extracted *domain.ExtractedText, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the extracted text through all processors in order.
	// Returns the final chunks after all processing. Empty text yields
	// an empty slice, not an error.
	Process(ctx context.Context, extracted *domain.ExtractedText) ([]domain.Chunk, error)
}
