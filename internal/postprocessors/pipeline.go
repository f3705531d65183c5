// Package postprocessors provides extracted-text processing implementations.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Pipeline chains multiple post-processors together.
// Processors run in registration order, each receiving the chunks
// produced by the previous one.
type Pipeline struct {
	processors []driven.PostProcessor
}

// Compile-time check that Pipeline implements the port.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// NewPipeline creates a pipeline with the given processors.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the extracted text through all processors in order.
// The text is mutable during the run; processors that normalise content
// update it in place before chunk-producing processors read it.
func (p *Pipeline) Process(ctx context.Context, text *domain.ExtractedText) ([]domain.Chunk, error) {
	if text == nil {
		return nil, errors.New("extracted text is nil")
	}

	var chunks []domain.Chunk
	var err error

	for _, processor := range p.processors {
		chunks, err = processor.Process(ctx, text, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// Add appends a processor to the end of the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
