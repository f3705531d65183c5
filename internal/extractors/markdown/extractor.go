package markdown

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "markdown"
}

// SupportedFormats returns the file formats this extractor handles.
func (e *Extractor) SupportedFormats() []domain.FileFormat {
	return []domain.FileFormat{domain.FormatMarkdown}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor, higher than plaintext
}

// Extract converts a markdown document to extracted text.
// The markdown formatting is kept as-is: headings and lists carry
// structure the question generator benefits from, so nothing is
// stripped. Only the title is lifted from the first heading.
func (e *Extractor) Extract(_ context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := plaintext.Decode(src.Content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Path, err)
	}

	return &domain.ExtractedText{
		SourceFile: src.Path,
		Title:      extractMarkdownTitle(text, src.Path),
		Text:       text,
		Extractor:  e.Name(),
	}, nil
}

// extractMarkdownTitle extracts a title from the markdown content or falls back to filename.
func extractMarkdownTitle(content, path string) string {
	// Try to find first H1 heading (# Title)
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	// Fall back to filename
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
