package filesystem

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory creates filesystem connectors for input paths.
type Factory struct{}

// NewFactory creates a connector factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns a connector rooted at the given file or directory.
// The path is made absolute so report entries are unambiguous.
func (f *Factory) Create(_ context.Context, root string) (driven.Connector, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: input path is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	return New(abs), nil
}
