package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// Ensure ExtractorRegistry implements the interface.
var _ driven.ExtractorRegistry = (*ExtractorRegistry)(nil)

// ExtractorRegistry walks registered extractors in priority order.
// The remote parser (when configured) sits at the top of the chain, so
// a failed remote call degrades to local extraction instead of failing
// the file.
type ExtractorRegistry struct {
	extractors []driven.Extractor
}

// NewExtractorRegistry creates an empty extractor registry.
func NewExtractorRegistry(extractors ...driven.Extractor) *ExtractorRegistry {
	r := &ExtractorRegistry{}
	for _, extractor := range extractors {
		r.Register(extractor)
	}
	return r
}

// Register adds an extractor, keeping the chain ordered by descending
// priority. Registration order breaks ties.
func (r *ExtractorRegistry) Register(extractor driven.Extractor) {
	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extract transforms a source document using the best available
// extractor, falling through the chain when a strategy fails.
func (r *ExtractorRegistry) Extract(ctx context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}
	if !src.Format.IsValid() {
		return nil, fmt.Errorf("file %s: %w", src.Path, domain.ErrUnsupportedFormat)
	}

	candidates := r.candidatesFor(src.Format)
	if len(candidates) == 0 {
		if src.Format.RequiresParser() {
			return nil, fmt.Errorf("format %s: %w", src.Format, domain.ErrParserUnavailable)
		}
		return nil, fmt.Errorf("format %s: %w", src.Format, domain.ErrUnsupportedFormat)
	}

	var attempts []error
	for _, extractor := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := extractor.Extract(ctx, src)
		if err != nil {
			logger.Warn("extraction failed, trying next strategy",
				"extractor", extractor.Name(), "file", src.Path, "error", err)
			attempts = append(attempts, fmt.Errorf("%s: %w", extractor.Name(), err))
			continue
		}
		return text, nil
	}

	return nil, fmt.Errorf("extract %s: %w: %w", src.Path, domain.ErrExtractionFailed, errors.Join(attempts...))
}

// SupportedFormats returns all formats the registered chain can handle,
// in canonical order.
func (r *ExtractorRegistry) SupportedFormats() []domain.FileFormat {
	var formats []domain.FileFormat
	for _, format := range domain.AllFormats() {
		if len(r.candidatesFor(format)) > 0 {
			formats = append(formats, format)
		}
	}
	return formats
}

// candidatesFor returns the extractors claiming the given format, in
// priority order. An extractor with no declared formats claims all.
func (r *ExtractorRegistry) candidatesFor(format domain.FileFormat) []driven.Extractor {
	var candidates []driven.Extractor
	for _, extractor := range r.extractors {
		supported := extractor.SupportedFormats()
		if len(supported) == 0 {
			candidates = append(candidates, extractor)
			continue
		}
		for _, f := range supported {
			if f == format {
				candidates = append(candidates, extractor)
				break
			}
		}
	}
	return candidates
}
