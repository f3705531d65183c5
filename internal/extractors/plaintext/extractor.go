package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// utf8BOM is stripped before decoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbackEncodings are tried in order when the content is not valid
// UTF-8. GBK covers the common legacy Chinese encodings, GB18030 is its
// superset, and Latin-1 accepts any byte sequence as a last resort.
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
}

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "plaintext"
}

// SupportedFormats returns the file formats this extractor handles.
// Markdown is included so this extractor can serve as the fallback when
// the markdown extractor fails.
func (e *Extractor) SupportedFormats() []domain.FileFormat {
	return []domain.FileFormat{
		domain.FormatText,
		domain.FormatMarkdown,
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract converts a text document to extracted text.
// The raw bytes are decoded through the encoding fallback chain.
func (e *Extractor) Extract(_ context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := Decode(src.Content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Path, err)
	}

	return &domain.ExtractedText{
		SourceFile: src.Path,
		Title:      extractTitle(src.Path),
		Text:       text,
		Extractor:  e.Name(),
	}, nil
}

// Decode converts raw file bytes to a UTF-8 string. Valid UTF-8 passes
// through unchanged. A byte-order mark selects the encoding outright;
// otherwise the fallback encodings are tried and the first decode that
// produces no replacement characters wins. Latin-1 closes the chain
// since it maps every byte.
func Decode(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	if utf8.Valid(content) {
		return string(content), nil
	}

	// BOM sniffing catches UTF-16 files, which the static ladder below
	// would mangle byte by byte.
	if enc, _, certain := charset.DetermineEncoding(content, ""); certain {
		decoded, err := enc.NewDecoder().Bytes(content)
		if err == nil {
			return strings.TrimPrefix(string(decoded), "\uFEFF"), nil
		}
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(content)
		if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
			return string(decoded), nil
		}
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	return string(decoded), nil
}

// extractTitle extracts a human-readable title from a file path.
func extractTitle(path string) string {
	// Get filename from path
	filename := filepath.Base(path)

	// Remove common extensions for cleaner title
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	// Replace underscores and dashes with spaces
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
