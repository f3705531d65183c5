package driving

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// RunHistory exposes recorded pipeline runs.
type RunHistory interface {
	// List returns run summaries, most recent first.
	// Limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.Report, error)

	// Get returns one run with its per-file outcomes.
	Get(ctx context.Context, runID string) (*domain.Report, error)
}
