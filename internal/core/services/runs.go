package services

import (
	"context"
	"fmt"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistory = (*RunHistoryService)(nil)

// RunHistoryService exposes recorded runs from the run ledger.
type RunHistoryService struct {
	runStore driven.RunStore
}

// NewRunHistoryService creates a new run history service.
func NewRunHistoryService(runStore driven.RunStore) *RunHistoryService {
	return &RunHistoryService{runStore: runStore}
}

// List returns run summaries, most recent first.
func (s *RunHistoryService) List(ctx context.Context, limit int) ([]domain.Report, error) {
	reports, err := s.runStore.ListReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return reports, nil
}

// Get returns one run with its per-file outcomes.
func (s *RunHistoryService) Get(ctx context.Context, runID string) (*domain.Report, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	report, err := s.runStore.GetReport(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return report, nil
}
