package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// recordingProcessor appends its name to a shared trace and tags the
// chunks it was handed.
type recordingProcessor struct {
	name  string
	trace *[]string
	err   error
}

func (p *recordingProcessor) Name() string { return p.name }

func (p *recordingProcessor) Process(_ context.Context, _ *domain.ExtractedText, chunks []domain.Chunk) ([]domain.Chunk, error) {
	*p.trace = append(*p.trace, p.name)
	if p.err != nil {
		return nil, p.err
	}
	return append(chunks, domain.Chunk{Content: p.name}), nil
}

func TestPipeline_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("nil text is rejected", func(t *testing.T) {
		_, err := NewPipeline().Process(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("empty pipeline yields no chunks", func(t *testing.T) {
		chunks, err := NewPipeline().Process(ctx, &domain.ExtractedText{
			SourceFile: "doc.txt",
			Text:       "content",
		})
		require.NoError(t, err)
		assert.Nil(t, chunks)
	})

	t.Run("processors run in order and thread their chunks", func(t *testing.T) {
		var trace []string
		p := NewPipeline(
			&recordingProcessor{name: "cleaner", trace: &trace},
			&recordingProcessor{name: "chunker", trace: &trace},
		)

		chunks, err := p.Process(ctx, &domain.ExtractedText{Text: "content"})
		require.NoError(t, err)

		assert.Equal(t, []string{"cleaner", "chunker"}, trace)
		require.Len(t, chunks, 2)
		assert.Equal(t, "cleaner", chunks[0].Content)
		assert.Equal(t, "chunker", chunks[1].Content)
	})

	t.Run("failure names the processor and stops the chain", func(t *testing.T) {
		var trace []string
		boom := errors.New("bad rune")
		p := NewPipeline(
			&recordingProcessor{name: "cleaner", trace: &trace, err: boom},
			&recordingProcessor{name: "chunker", trace: &trace},
		)

		_, err := p.Process(ctx, &domain.ExtractedText{Text: "content"})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "processor cleaner")
		assert.Equal(t, []string{"cleaner"}, trace, "chain must stop at the failure")
	})
}

func TestPipeline_Add(t *testing.T) {
	var trace []string
	p := NewPipeline()
	assert.Equal(t, 0, p.Len())

	p.Add(&recordingProcessor{name: "cleaner", trace: &trace})
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_Process_CleanerThenChunker(t *testing.T) {
	registry := NewRegistry()
	RegisterDefaults(registry)

	cleanerProc, err := registry.Build("cleaner", nil)
	require.NoError(t, err)
	chunkerProc, err := registry.Build("chunker", map[string]any{"chunk_size": 50})
	require.NoError(t, err)

	p := NewPipeline(cleanerProc, chunkerProc)

	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "First paragraph.\r\n\r\n\r\n\r\nSecond paragraph.",
	}

	chunks, err := p.Process(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "cleaned text fits a single chunk")
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", chunks[0].Content)
}
