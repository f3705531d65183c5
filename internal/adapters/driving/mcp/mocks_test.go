package mcp

import (
	"context"
	"time"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings != nil {
		s := *m.settings
		return &s, nil
	}
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetParser(_ string, _ time.Duration) error {
	return m.err
}

func (m *mockSettingsService) SetGeneration(_, _ int) error {
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.err
}

func (m *mockSettingsService) ValidateParserConfig() error {
	return m.err
}

// mockRunHistory is a mock implementation of driving.RunHistory.
type mockRunHistory struct {
	reports []domain.Report
	report  *domain.Report
	listErr error
	getErr  error
}

func (m *mockRunHistory) List(_ context.Context, limit int) ([]domain.Report, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit > 0 && len(m.reports) > limit {
		return m.reports[:limit], nil
	}
	return m.reports, nil
}

func (m *mockRunHistory) Get(_ context.Context, _ string) (*domain.Report, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.report == nil {
		return nil, domain.ErrNotFound
	}
	return m.report, nil
}

// mockPipeline is a mock implementation of driving.Pipeline.
type mockPipeline struct {
	report *domain.Report
	err    error

	lastInput string
	lastOpts  driving.RunOptions
}

func (m *mockPipeline) Run(_ context.Context, input string, opts driving.RunOptions) (*domain.Report, error) {
	m.lastInput = input
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockPipeline) Status() driving.RunStatus {
	return driving.RunStatus{}
}

func (m *mockPipeline) SupportedFormats() []domain.FileFormat {
	return domain.AllFormats()
}

// builderFor returns a PipelineBuilder that always yields pipe.
func builderFor(pipe driving.Pipeline) PipelineBuilder {
	return func(_ domain.AppSettings) (driving.Pipeline, error) {
		return pipe, nil
	}
}

// testSettings returns runnable settings for handler tests.
func testSettings() *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.LLM.APIKey = "sk-test"
	return &s
}

// testReport returns a report with one written and one failed file.
func testReport() *domain.Report {
	return &domain.Report{
		RunID:           "run-1",
		InputPath:       "/docs",
		OutputPath:      "/docs/sft_dataset.jsonl",
		StartedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:        1500 * time.Millisecond,
		FilesDiscovered: 2,
		FilesProcessed:  1,
		FilesFailed:     1,
		ChunksProcessed: 1,
		PairsWritten:    5,
		Files: []domain.FileResult{
			{
				Path:         "/docs/a.txt",
				State:        domain.StateWritten,
				ChunksTotal:  1,
				PairsWritten: 5,
				Duration:     time.Second,
			},
			{
				Path:  "/docs/b.pdf",
				State: domain.StateFailed,
				Stage: domain.StageExtract,
				Error: "text extraction failed",
			},
		},
	}
}
