package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pdf"
}

// SupportedFormats returns the file formats this extractor handles.
func (e *Extractor) SupportedFormats() []domain.FileFormat {
	return []domain.FileFormat{domain.FormatPDF}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract converts a PDF document to extracted text.
// Pages are separated by blank lines and recorded as sections. A page
// that yields no text is skipped; scanned pages need the remote parser.
func (e *Extractor) Extract(_ context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := pdf.NewReader(bytes.NewReader(src.Content), int64(len(src.Content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", domain.ErrInvalidInput)
	}

	var parts []string
	var sections []domain.Section
	offset := 0

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if len(parts) > 0 {
			offset += 2 // "\n\n" separator
		}
		sections = append(sections, domain.Section{
			Kind:   "page",
			Index:  i,
			Offset: offset,
		})
		offset += utf8.RuneCountInString(text)
		parts = append(parts, text)
	}

	return &domain.ExtractedText{
		SourceFile: src.Path,
		Title:      extractTitle(src.Path),
		Text:       strings.Join(parts, "\n\n"),
		Sections:   sections,
		Extractor:  e.Name(),
	}, nil
}

// extractTitle extracts a human-readable title from a file path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
