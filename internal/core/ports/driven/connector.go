package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// Connector discovers source documents from an input location.
// The filesystem connector is the only implementation today; the
// interface keeps discovery swappable and testable.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Root returns the configured input path (file or directory).
	Root() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks the input path exists and is readable.
	// Returns nil if ready to discover, an error describing the
	// problem otherwise.
	Validate(ctx context.Context) error

	// Discover streams all supported source documents under the root in
	// sorted path order. Documents carry metadata only; call Load before
	// extraction. Returns channels for documents and errors; both close
	// when discovery completes. Unsupported files are skipped in
	// directory mode and reported on the error channel in single-file
	// mode.
	Discover(ctx context.Context) (<-chan domain.SourceDocument, <-chan error)

	// Load fills in the document content. Kept separate from Discover
	// so a large corpus is never held in memory at once; the pipeline
	// loads each file only when a worker picks it up.
	Load(ctx context.Context, doc *domain.SourceDocument) error

	// Watch listens for file changes under the root.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorFactory creates connectors for input paths.
type ConnectorFactory interface {
	// Create returns a connector rooted at the given file or directory.
	Create(ctx context.Context, root string) (Connector, error)
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push change events.
	SupportsWatch bool

	// SupportsHierarchy indicates the root may contain nested directories.
	SupportsHierarchy bool
}
