package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

func reportAt(runID string, startedAt time.Time) *domain.Report {
	return &domain.Report{
		RunID:        runID,
		InputPath:    "/docs",
		OutputPath:   "/output/sft_dataset.jsonl",
		StartedAt:    startedAt,
		PairsWritten: 10,
		Files: []domain.FileResult{
			{Path: "/docs/a.pdf", State: domain.StateWritten, PairsWritten: 10},
		},
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	original := reportAt("run-1", time.Now())
	require.NoError(t, store.SaveReport(ctx, original))

	loaded, err := store.GetReport(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	require.Len(t, loaded.Files, 1)

	// The store keeps its own copy
	loaded.Files[0].Path = "/mutated"
	again, err := store.GetReport(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "/docs/a.pdf", again.Files[0].Path)
}

func TestRunStore_SaveReport_Invalid(t *testing.T) {
	store := NewRunStore()

	assert.ErrorIs(t, store.SaveReport(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveReport(context.Background(), &domain.Report{}), domain.ErrInvalidInput)
}

func TestRunStore_ListReports_Ordering(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveReport(ctx, reportAt("run-old", base)))
	require.NoError(t, store.SaveReport(ctx, reportAt("run-new", base.Add(time.Hour))))

	reports, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "run-new", reports[0].RunID)
	assert.Nil(t, reports[0].Files, "summaries carry no file outcomes")

	limited, err := store.ListReports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-new", limited[0].RunID)
}

func TestRunStore_GetReport_NotFound(t *testing.T) {
	store := NewRunStore()

	_, err := store.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
