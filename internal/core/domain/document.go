package domain

import (
	"strings"
	"time"
)

// SourceDocument represents a discovered input file before extraction.
// It is consumed exactly once by the extractor and not retained afterwards.
type SourceDocument struct {
	// ID is the unique identifier assigned at discovery.
	ID string

	// Path is the file path and serves as the document's identity.
	Path string

	// Format is the detected file format (from the extension).
	Format FileFormat

	// Content is the raw file bytes.
	Content []byte

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file's last modification time.
	ModTime time.Time
}

// Section marks a structural boundary (page or slide) within extracted text.
type Section struct {
	// Kind is "page" or "slide".
	Kind string

	// Index is the 1-based page or slide number.
	Index int

	// Offset is the rune offset where the section starts.
	Offset int
}

// ExtractedText is the flattened text produced from one source file.
// It is owned by the pipeline run for that file and discarded after chunking.
type ExtractedText struct {
	// SourceFile is the originating file path.
	SourceFile string

	// Title is a human-readable title when the format provides one.
	Title string

	// Text is the full normalised text content.
	Text string

	// Sections holds optional page/slide boundaries in offset order.
	Sections []Section

	// Extractor names the strategy that produced the text.
	Extractor string
}

// IsEmpty returns true when the text holds no non-whitespace content.
func (e *ExtractedText) IsEmpty() bool {
	return strings.TrimSpace(e.Text) == ""
}

// Chunk represents a bounded segment of a document's extracted text.
// Chunks are the unit of context for question/answer generation.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Index is the 0-based ordinal position within the document.
	// Indices are assigned before any generation begins and are stable.
	Index int

	// Content is the text content of this chunk.
	// Its rune length never exceeds the configured chunk size unless the
	// source contained a single unsplittable unit longer than that.
	Content string

	// SourceFile back-references the originating file path.
	SourceFile string
}

// QAPair is one generated instruction/output record.
// Created by the generator from exactly one chunk; immutable once created.
type QAPair struct {
	// Instruction is the generated question.
	Instruction string `json:"instruction"`

	// Input is optional additional context. Empty by default.
	Input string `json:"input"`

	// Output is the generated answer.
	Output string `json:"output"`

	// SourceFile back-references the originating file path.
	SourceFile string `json:"source_file"`
}

// Validate checks that the pair carries the required non-empty fields.
func (p *QAPair) Validate() error {
	if strings.TrimSpace(p.Instruction) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(p.Output) == "" {
		return ErrInvalidInput
	}
	return nil
}
