// Package cleaner provides a text normalisation processor.
package cleaner

import (
	"context"
	"regexp"
	"strings"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

var (
	// controlChars matches control characters other than tab and newline.
	controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")

	// trailingSpace matches whitespace runs at the end of a line.
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)

	// blankRuns matches three or more consecutive newlines.
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Processor normalises extracted text before chunking.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new cleaner processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process normalises the extracted text in place and passes chunks
// through unchanged. Line endings become LF, control characters and the
// BOM are dropped, and runs of blank lines collapse to a single
// paragraph break.
func (p *Processor) Process(_ context.Context, text *domain.ExtractedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	text.Text = Clean(text.Text)
	return chunks, nil
}

// Clean applies the normalisation rules to a raw text string.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimPrefix(s, "\uFEFF")
	s = controlChars.ReplaceAllString(s, "")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
