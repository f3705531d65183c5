package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// DatasetWriter appends generated QA pairs to the output dataset.
// Implementations must serialise concurrent appends so interleaved
// writes never corrupt a record line.
type DatasetWriter interface {
	// Append writes one record as a single JSON line.
	// The record must be durable once Append returns.
	Append(ctx context.Context, pair *domain.QAPair) error

	// Written returns the number of records appended by this writer.
	Written() int

	// Path returns the output file path.
	Path() string

	// Close flushes and releases the file handle.
	Close() error
}

// DatasetWriterFactory opens dataset writers.
type DatasetWriterFactory interface {
	// Create opens the dataset at path for appending, creating parent
	// directories as needed. Overwrite truncates an existing file
	// instead.
	Create(path string, overwrite bool) (DatasetWriter, error)
}
