// Package jsonl persists generated QA pairs as JSON Lines, one record
// per line in the order instruction, input, output, source_file.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure the implementations satisfy the interfaces.
var (
	_ driven.DatasetWriter        = (*Writer)(nil)
	_ driven.DatasetWriterFactory = (*Factory)(nil)
)

// Writer appends QA pairs to a JSONL file. A mutex serialises appends
// so concurrent answer workers never interleave partial lines, and
// every record is synced before Append returns. A run killed mid-way
// therefore leaves a valid dataset of everything appended so far.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	written int
	closed  bool
}

// NewWriter opens the dataset file for appending, creating parent
// directories as needed. With overwrite, an existing file is truncated
// instead; otherwise records accumulate across runs.
func NewWriter(path string, overwrite bool) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path is required", domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	return &Writer{
		file: file,
		path: path,
	}, nil
}

// Append writes one record as a single JSON line.
func (w *Writer) Append(ctx context.Context, pair *domain.QAPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pair == nil {
		return fmt.Errorf("%w: nil pair", domain.ErrInvalidInput)
	}
	if err := pair.Validate(); err != nil {
		return fmt.Errorf("invalid pair from %s: %w", pair.SourceFile, err)
	}

	line, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %w", domain.ErrOutputWrite, err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("%w: writer closed", domain.ErrOutputWrite)
	}

	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputWrite, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", domain.ErrOutputWrite, err)
	}

	w.written++
	return nil
}

// Written returns the number of records appended by this writer.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Close releases the file handle. Safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close dataset %s: %w", w.path, err)
	}
	return nil
}

// Factory opens JSONL dataset writers.
type Factory struct{}

// NewFactory creates a new JSONL writer factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create opens the dataset at path for appending, or truncates it when
// overwrite is set.
func (f *Factory) Create(path string, overwrite bool) (driven.DatasetWriter, error) {
	writer, err := NewWriter(path, overwrite)
	if err != nil {
		return nil, err
	}
	return writer, nil
}
