package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// RunStore persists run history.
// All methods are best-effort from the pipeline's point of view: a
// ledger failure is logged, never fatal to a run.
type RunStore interface {
	// SaveReport stores a completed run's report with its file outcomes.
	SaveReport(ctx context.Context, report *domain.Report) error

	// ListReports returns run summaries, most recent first, without
	// per-file outcomes. Limit <= 0 means no limit.
	ListReports(ctx context.Context, limit int) ([]domain.Report, error)

	// GetReport returns one run with its per-file outcomes.
	// Returns domain.ErrNotFound when the run does not exist.
	GetReport(ctx context.Context, runID string) (*domain.Report, error)

	// Close releases the underlying storage.
	Close() error
}
