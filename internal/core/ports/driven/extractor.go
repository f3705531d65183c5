package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// Extractor turns a source document into normalised text.
// Each extractor handles specific file formats (e.g., PDF, DOCX), or
// delegates to the remote parsing service.
type Extractor interface {
	// Name returns the extractor name for logging and diagnostics.
	Name() string

	// SupportedFormats returns the file formats this extractor handles.
	// An empty slice means every supported format (remote parsing).
	SupportedFormats() []domain.FileFormat

	// Priority returns the selection priority (higher = preferred).
	// The remote parser returns 90-100.
	// Format-specific local extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract transforms a source document into flattened text.
	// It must return the whole document; chunk-size awareness does
	// not belong here.
	Extract(ctx context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error)
}
