package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu      sync.RWMutex
	reports map[string]domain.Report
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		reports: make(map[string]domain.Report),
	}
}

// SaveReport stores a completed run's report.
func (s *RunStore) SaveReport(_ context.Context, report *domain.Report) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *report
	stored.Files = append([]domain.FileResult(nil), report.Files...)
	s.reports[report.RunID] = stored
	return nil
}

// ListReports returns run summaries, most recent first, without
// per-file outcomes.
func (s *RunStore) ListReports(_ context.Context, limit int) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]domain.Report, 0, len(s.reports))
	for _, report := range s.reports {
		report.Files = nil
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	if limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	return reports, nil
}

// GetReport returns one run with its per-file outcomes.
func (s *RunStore) GetReport(_ context.Context, runID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	result := report
	result.Files = append([]domain.FileResult(nil), report.Files...)
	return &result, nil
}

// Close is a no-op for the in-memory store.
func (s *RunStore) Close() error {
	return nil
}
