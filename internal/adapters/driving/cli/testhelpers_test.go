package cli

import (
	"context"
	"time"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    *domain.AppSettings
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.LLM.APIKey = "sk-test-1234567890"
	return &mockSettingsService{settings: &s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	copied := *m.settings
	return &copied, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetParser(url string, timeout time.Duration) error {
	m.settings.Parser.URL = url
	m.settings.Parser.Timeout = timeout
	return nil
}

func (m *mockSettingsService) SetGeneration(questionsPerChunk, chunkSize int) error {
	m.settings.Generation.QuestionsPerChunk = questionsPerChunk
	m.settings.Generation.ChunkSize = chunkSize
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

func (m *mockSettingsService) ValidateParserConfig() error { return nil }

// mockRunHistory implements driving.RunHistory for testing.
type mockRunHistory struct {
	reports []domain.Report
	err     error
}

func (m *mockRunHistory) List(_ context.Context, limit int) ([]domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.reports) {
		return m.reports[:limit], nil
	}
	return m.reports, nil
}

func (m *mockRunHistory) Get(_ context.Context, runID string) (*domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.reports {
		if m.reports[i].RunID == runID {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockPipeline implements driving.Pipeline for testing.
type mockPipeline struct {
	report *domain.Report
	err    error
	status driving.RunStatus
}

func (m *mockPipeline) Run(_ context.Context, input string, opts driving.RunOptions) (*domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	report := *m.report
	report.InputPath = input
	if opts.OutputPath != "" {
		report.OutputPath = opts.OutputPath
	}
	return &report, nil
}

func (m *mockPipeline) Status() driving.RunStatus { return m.status }

func (m *mockPipeline) SupportedFormats() []domain.FileFormat { return domain.AllFormats() }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	err error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "stub prompt for " + name, nil
}

func (m *mockPromptStore) Reload() {}

// testReport builds a deterministic report with one written, one failed,
// and one skipped file.
func testReport(runID string) *domain.Report {
	return &domain.Report{
		RunID:           runID,
		InputPath:       "./docs",
		OutputPath:      "./output/sft_dataset.jsonl",
		StartedAt:       time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Duration:        95 * time.Second,
		FilesDiscovered: 3,
		FilesProcessed:  1,
		FilesFailed:     1,
		FilesSkipped:    1,
		ChunksProcessed: 4,
		ChunksFailed:    1,
		PairsWritten:    12,
		Files: []domain.FileResult{
			{
				Path:         "./docs/guide.pdf",
				State:        domain.StateWritten,
				ChunksTotal:  4,
				PairsWritten: 12,
				Duration:     80 * time.Second,
			},
			{
				Path:     "./docs/broken.docx",
				State:    domain.StateFailed,
				Stage:    domain.StageExtract,
				Error:    "document.xml not found in archive",
				Duration: 2 * time.Second,
			},
			{
				Path:     "./docs/empty.txt",
				State:    domain.StateSkipped,
				Duration: time.Second,
			},
		},
	}
}

// setupTestServices wires mocks into the package-level service variables
// and returns a cleanup function restoring the previous wiring.
func setupTestServices() func() {
	oldSettings := settingsService
	oldRuns := runHistory
	oldPrompts := promptStore
	oldBuilder := pipelineBuilder
	oldDir := promptDir

	pipe := &mockPipeline{report: testReport("run-test-1")}
	SetServices(Services{
		Settings: newMockSettingsService(),
		Runs: &mockRunHistory{reports: []domain.Report{
			*testReport("run-test-1"),
			*testReport("run-test-2"),
		}},
		Prompts: &mockPromptStore{},
		BuildPipeline: func(_ domain.AppSettings) (driving.Pipeline, error) {
			return pipe, nil
		},
		PromptDir: "/tmp/sftgen-prompts",
	})

	return func() {
		settingsService = oldSettings
		runHistory = oldRuns
		promptStore = oldPrompts
		pipelineBuilder = oldBuilder
		promptDir = oldDir
	}
}
