package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// ExtractorRegistry selects the extraction strategy for a document.
// It maintains a priority-ordered list of extractors and walks the
// chain on failure: remote first when configured, then the local
// format-specific extractor.
type ExtractorRegistry interface {
	// Extract transforms a source document using the best available
	// extractor, falling through the chain when a strategy fails.
	// Returns domain.ErrUnsupportedFormat when no extractor applies and
	// domain.ErrExtractionFailed when every applicable strategy failed.
	Extract(ctx context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedFormats returns all formats that can be extracted.
	SupportedFormats() []domain.FileFormat
}
