// Package remote adapts the external parsing service to the Extractor
// interface so it can sit at the top of the extraction chain.
package remote

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor delegates extraction to the remote parsing service.
type Extractor struct {
	parser driven.DocumentParser
}

// New creates a new remote extractor wrapping the given parser.
func New(parser driven.DocumentParser) *Extractor {
	return &Extractor{parser: parser}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "remote"
}

// SupportedFormats returns nil: the remote service accepts every format.
func (e *Extractor) SupportedFormats() []domain.FileFormat {
	return nil
}

// Priority returns the selection priority. The remote parser runs
// before every local extractor so its higher-fidelity output wins when
// the service is reachable.
func (e *Extractor) Priority() int {
	return 95
}

// Extract uploads the document to the parsing service. The service
// returns markdown, which is kept as-is; a failed call surfaces to the
// registry, which falls back to the local extractors.
func (e *Extractor) Extract(ctx context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := e.parser.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("remote parse %s: %w", src.Path, err)
	}

	return &domain.ExtractedText{
		SourceFile: src.Path,
		Title:      extractTitle(text, src.Path),
		Text:       text,
		Extractor:  e.Name(),
	}, nil
}

// extractTitle lifts the title from the first markdown heading in the
// parsed output, falling back to the filename.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
