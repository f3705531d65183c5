package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedFormats(t *testing.T) {
	extractor := New()
	formats := extractor.SupportedFormats()

	require.NotEmpty(t, formats)
	assert.Contains(t, formats, domain.FormatPDF)
	assert.Len(t, formats, 1)
}

func TestPriority(t *testing.T) {
	extractor := New()
	assert.Equal(t, 50, extractor.Priority())
}

func TestExtract_NilDocument(t *testing.T) {
	extractor := New()

	result, err := extractor.Extract(context.Background(), nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtract_InvalidContent(t *testing.T) {
	extractor := New()

	src := &domain.SourceDocument{
		Path:    "/path/to/broken.pdf",
		Format:  domain.FormatPDF,
		Content: []byte("not a pdf at all"),
	}

	result, err := extractor.Extract(context.Background(), src)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"simple file", "/data/report.pdf", "report"},
		{"underscores replaced", "/data/annual_report_2024.pdf", "annual report 2024"},
		{"dashes replaced", "/data/annual-report.pdf", "annual report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTitle(tt.path))
		})
	}
}
