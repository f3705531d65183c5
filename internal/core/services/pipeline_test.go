package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
	"github.com/datacraft-labs/sftgen-cli/internal/postprocessors"
	"github.com/datacraft-labs/sftgen-cli/internal/postprocessors/chunker"
	"github.com/datacraft-labs/sftgen-cli/internal/postprocessors/cleaner"
)

// fakeConnector serves documents from an in-memory file map.
type fakeConnector struct {
	root        string
	files       map[string]string
	validateErr error
	loadErr     map[string]error
	closed      bool
}

func (f *fakeConnector) Type() string { return "fake" }
func (f *fakeConnector) Root() string { return f.root }

func (f *fakeConnector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsHierarchy: true}
}

func (f *fakeConnector) Validate(context.Context) error { return f.validateErr }

func (f *fakeConnector) Discover(ctx context.Context) (<-chan domain.SourceDocument, <-chan error) {
	docsCh := make(chan domain.SourceDocument)
	errsCh := make(chan error, 1)

	paths := make([]string, 0, len(f.files))
	for path := range f.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	go func() {
		defer close(docsCh)
		defer close(errsCh)
		for _, path := range paths {
			format, ok := domain.FormatFromPath(path)
			if !ok {
				continue
			}
			doc := domain.SourceDocument{ID: path, Path: path, Format: format}
			select {
			case docsCh <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return docsCh, errsCh
}

func (f *fakeConnector) Load(_ context.Context, doc *domain.SourceDocument) error {
	if err := f.loadErr[doc.Path]; err != nil {
		return err
	}
	doc.Content = []byte(f.files[doc.Path])
	return nil
}

func (f *fakeConnector) Watch(context.Context) (<-chan domain.FileChange, error) {
	return nil, errors.New("watch not supported")
}

func (f *fakeConnector) Close() error {
	f.closed = true
	return nil
}

type fakeConnectorFactory struct {
	connector *fakeConnector
}

func (f *fakeConnectorFactory) Create(_ context.Context, root string) (driven.Connector, error) {
	f.connector.root = root
	return f.connector, nil
}

// contentExtractor echoes the document bytes as extracted text.
type contentExtractor struct {
	failOn map[string]error
}

func (e *contentExtractor) Name() string                          { return "content" }
func (e *contentExtractor) SupportedFormats() []domain.FileFormat { return nil }
func (e *contentExtractor) Priority() int                         { return 50 }

func (e *contentExtractor) Extract(_ context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if err := e.failOn[src.Path]; err != nil {
		return nil, err
	}
	return &domain.ExtractedText{
		SourceFile: src.Path,
		Text:       string(src.Content),
		Extractor:  "content",
	}, nil
}

// memWriter collects appended pairs in memory.
type memWriter struct {
	mu        sync.Mutex
	pairs     []domain.QAPair
	path      string
	overwrite bool
	appendErr error
	closed    bool
}

func (w *memWriter) Append(_ context.Context, pair *domain.QAPair) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.appendErr != nil {
		return w.appendErr
	}
	w.pairs = append(w.pairs, *pair)
	return nil
}

func (w *memWriter) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pairs)
}

func (w *memWriter) Path() string { return w.path }

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func (w *memWriter) all() []domain.QAPair {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.QAPair, len(w.pairs))
	copy(out, w.pairs)
	return out
}

type memWriterFactory struct {
	writer *memWriter
}

func (f *memWriterFactory) Create(path string, overwrite bool) (driven.DatasetWriter, error) {
	f.writer.path = path
	f.writer.overwrite = overwrite
	return f.writer, nil
}

// stubGenerator answers from function hooks.
type stubGenerator struct {
	mu        sync.Mutex
	questions func(chunk domain.Chunk, n int) ([]string, error)
	answers   func(chunk domain.Chunk, question string) (string, error)
	qCalls    int
	aCalls    int
}

func (g *stubGenerator) GenerateQuestions(_ context.Context, chunk domain.Chunk, n int) ([]string, error) {
	g.mu.Lock()
	g.qCalls++
	g.mu.Unlock()
	return g.questions(chunk, n)
}

func (g *stubGenerator) GenerateAnswer(_ context.Context, chunk domain.Chunk, question string) (string, error) {
	g.mu.Lock()
	g.aCalls++
	g.mu.Unlock()
	return g.answers(chunk, question)
}

type fakeRunStore struct {
	mu    sync.Mutex
	saved []*domain.Report
	err   error
}

func (s *fakeRunStore) SaveReport(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, report)
	return nil
}

func (s *fakeRunStore) ListReports(context.Context, int) ([]domain.Report, error) { return nil, nil }

func (s *fakeRunStore) GetReport(context.Context, string) (*domain.Report, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeRunStore) Close() error { return nil }

// echoGenerator returns deterministic questions and answers derived
// from the chunk.
func echoGenerator(perChunk int) *stubGenerator {
	return &stubGenerator{
		questions: func(chunk domain.Chunk, n int) ([]string, error) {
			if n > perChunk {
				n = perChunk
			}
			questions := make([]string, 0, n)
			for i := 0; i < n; i++ {
				questions = append(questions, fmt.Sprintf("question %d about %s", i, chunk.ID))
			}
			return questions, nil
		},
		answers: func(chunk domain.Chunk, question string) (string, error) {
			return "answer from " + chunk.ID, nil
		},
	}
}

// blockingGenerator parks every question call until the context is
// cancelled.
type blockingGenerator struct {
	entered chan struct{}
	once    sync.Once
}

func (g *blockingGenerator) GenerateQuestions(ctx context.Context, _ domain.Chunk, _ int) ([]string, error) {
	g.once.Do(func() { close(g.entered) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func (g *blockingGenerator) GenerateAnswer(ctx context.Context, _ domain.Chunk, _ string) (string, error) {
	return "", ctx.Err()
}

type testPipeline struct {
	pipeline  *Pipeline
	connector *fakeConnector
	writer    *memWriter
	runStore  *fakeRunStore
}

func newTestPipeline(t *testing.T, files map[string]string, generator QAGenerator, mutate ...func(*domain.AppSettings)) *testPipeline {
	t.Helper()

	settings := domain.DefaultAppSettings()
	settings.Generation.QuestionsPerChunk = 2
	settings.Generation.FileWorkers = 2
	settings.Generation.AnswerWorkers = 2
	for _, m := range mutate {
		m(&settings)
	}

	connector := &fakeConnector{files: files}
	writer := &memWriter{}
	runStore := &fakeRunStore{}

	registry := NewExtractorRegistry(&contentExtractor{})
	processors := postprocessors.NewPipeline(
		cleaner.New(),
		chunker.New(chunker.WithChunkSize(settings.Generation.ChunkSize)),
	)

	pipeline := NewPipeline(
		&fakeConnectorFactory{connector: connector},
		registry,
		processors,
		generator,
		&memWriterFactory{writer: writer},
		runStore,
		settings,
	)

	return &testPipeline{
		pipeline:  pipeline,
		connector: connector,
		writer:    writer,
		runStore:  runStore,
	}
}

func TestPipeline_Run(t *testing.T) {
	files := map[string]string{
		"/data/alpha.txt": "Alpha document body.",
		"/data/beta.md":   "# Beta\n\nBeta document body.",
	}
	tp := newTestPipeline(t, files, echoGenerator(2))

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/data", report.InputPath)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.FilesDiscovered)
	assert.Equal(t, 2, report.FilesProcessed)
	assert.Equal(t, 0, report.FilesFailed)
	assert.Equal(t, 0, report.FilesSkipped)
	assert.Equal(t, 2, report.ChunksProcessed)
	assert.Equal(t, 0, report.ChunksFailed)
	assert.Equal(t, 4, report.PairsWritten)
	assert.Equal(t, 4, tp.writer.Written())

	// Per-file outcomes stay in discovery order.
	require.Len(t, report.Files, 2)
	assert.Equal(t, "/data/alpha.txt", report.Files[0].Path)
	assert.Equal(t, "/data/beta.md", report.Files[1].Path)
	for _, file := range report.Files {
		assert.Equal(t, domain.StateWritten, file.State)
		assert.Equal(t, 2, file.PairsWritten)
	}

	// Records carry the base file name, never the full path.
	for _, pair := range tp.writer.all() {
		assert.NotContains(t, pair.SourceFile, "/")
	}

	assert.True(t, tp.connector.closed)
	assert.True(t, tp.writer.closed)
}

// The worked end-to-end example: one small file, one chunk, one
// question, one answer.
func TestPipeline_Run_CapitalExample(t *testing.T) {
	files := map[string]string{
		"/data/doc.txt": "France is a country in Europe. The capital city is Paris.",
	}
	generator := &stubGenerator{
		questions: func(domain.Chunk, int) ([]string, error) {
			return []string{"What is the capital of France?"}, nil
		},
		answers: func(_ domain.Chunk, question string) (string, error) {
			return "Paris.", nil
		},
	}
	tp := newTestPipeline(t, files, generator)

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsWritten)

	pairs := tp.writer.all()
	require.Len(t, pairs, 1)
	assert.Equal(t, domain.QAPair{
		Instruction: "What is the capital of France?",
		Input:       "",
		Output:      "Paris.",
		SourceFile:  "doc.txt",
	}, pairs[0])
}

func TestPipeline_Run_PartialFailureIsolation(t *testing.T) {
	files := map[string]string{
		"/data/one.txt":   "First document.",
		"/data/two.txt":   "Second document.",
		"/data/three.txt": "Third document.",
	}
	tp := newTestPipeline(t, files, echoGenerator(2))
	tp.connector.loadErr = map[string]error{
		"/data/three.txt": errors.New("permission denied"),
	}

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err, "one bad file must not abort the batch")

	assert.Equal(t, 3, report.FilesDiscovered)
	assert.Equal(t, 2, report.FilesProcessed)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 4, report.PairsWritten)

	var failed *domain.FileResult
	for i := range report.Files {
		if report.Files[i].State == domain.StateFailed {
			failed = &report.Files[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "/data/three.txt", failed.Path)
	assert.Equal(t, domain.StageExtract, failed.Stage)
	assert.Contains(t, failed.Error, "permission denied")

	// Output only contains pairs from the two good files.
	for _, pair := range tp.writer.all() {
		assert.NotEqual(t, "three.txt", pair.SourceFile)
	}
}

func TestPipeline_Run_ExtractionFailureRecorded(t *testing.T) {
	files := map[string]string{
		"/data/broken.pdf": "not really a pdf",
		"/data/fine.txt":   "Readable text.",
	}
	tp := newTestPipeline(t, files, echoGenerator(2))

	registry := NewExtractorRegistry(&contentExtractor{
		failOn: map[string]error{"/data/broken.pdf": errors.New("malformed xref")},
	})
	tp.pipeline.registry = registry

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 1, report.FilesProcessed)
	require.Equal(t, domain.StateFailed, report.Files[0].State)
	assert.Equal(t, domain.StageExtract, report.Files[0].Stage)
	assert.Contains(t, report.Files[0].Error, "malformed xref")
}

func TestPipeline_Run_EmptyFileSkipped(t *testing.T) {
	files := map[string]string{
		"/data/blank.txt": "   \n\n \n",
		"/data/full.txt":  "Some content.",
	}
	tp := newTestPipeline(t, files, echoGenerator(2))

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesSkipped)
	assert.Equal(t, 1, report.FilesProcessed)
	assert.Equal(t, 0, report.FilesFailed)
	assert.Equal(t, domain.StateSkipped, report.Files[0].State)
	assert.Equal(t, 2, report.PairsWritten)
}

func TestPipeline_Run_AllChunksFailed(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Document body."}
	generator := &stubGenerator{
		questions: func(domain.Chunk, int) ([]string, error) {
			return nil, domain.ErrNoQuestions
		},
		answers: func(domain.Chunk, string) (string, error) {
			return "", errors.New("unused")
		},
	}
	tp := newTestPipeline(t, files, generator)

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 0, report.PairsWritten)
	require.Equal(t, domain.StateFailed, report.Files[0].State)
	assert.Equal(t, domain.StageGenerate, report.Files[0].Stage)
	assert.Equal(t, report.Files[0].ChunksTotal, report.Files[0].ChunksFailed)
}

func TestPipeline_Run_PartialChunkFailure(t *testing.T) {
	// Two paragraphs over a small chunk size produce two chunks.
	files := map[string]string{
		"/data/doc.txt": "First paragraph here.\n\nSecond paragraph here.",
	}
	generator := &stubGenerator{
		questions: func(chunk domain.Chunk, n int) ([]string, error) {
			if strings.Contains(chunk.Content, "Second") {
				return nil, domain.ErrNoQuestions
			}
			return []string{"q?"}, nil
		},
		answers: func(domain.Chunk, string) (string, error) {
			return "a.", nil
		},
	}
	tp := newTestPipeline(t, files, generator, func(s *domain.AppSettings) {
		s.Generation.ChunkSize = 25
	})

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	// The file still succeeds; the failed chunk is recorded.
	assert.Equal(t, 1, report.FilesProcessed)
	assert.Equal(t, 0, report.FilesFailed)
	assert.Equal(t, 1, report.ChunksProcessed)
	assert.Equal(t, 1, report.ChunksFailed)
	assert.Equal(t, 1, report.PairsWritten)
	assert.Equal(t, domain.StateWritten, report.Files[0].State)
}

func TestPipeline_Run_AnswerFailureDropsQuestionOnly(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Document body."}
	generator := &stubGenerator{
		questions: func(domain.Chunk, int) ([]string, error) {
			return []string{"good?", "bad?"}, nil
		},
		answers: func(_ domain.Chunk, question string) (string, error) {
			if question == "bad?" {
				return "", domain.ErrLLMCall
			}
			return "fine.", nil
		},
	}
	tp := newTestPipeline(t, files, generator)

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.PairsWritten)
	assert.Equal(t, 0, report.ChunksFailed)
	assert.Equal(t, domain.StateWritten, report.Files[0].State)

	pairs := tp.writer.all()
	require.Len(t, pairs, 1)
	assert.Equal(t, "good?", pairs[0].Instruction)
}

func TestPipeline_Run_OutputWriteFatal(t *testing.T) {
	files := map[string]string{
		"/data/one.txt": "First document.",
		"/data/two.txt": "Second document.",
	}
	tp := newTestPipeline(t, files, echoGenerator(2))
	tp.writer.appendErr = errors.New("disk full")

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOutputWrite)
	assert.Nil(t, report)
}

func TestPipeline_Run_ValidateError(t *testing.T) {
	tp := newTestPipeline(t, map[string]string{}, echoGenerator(1))
	tp.connector.validateErr = errors.New("no such directory")

	_, err := tp.pipeline.Run(context.Background(), "/missing", driving.RunOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such directory")
}

func TestPipeline_Run_OutputPathOverride(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}

	t.Run("default path from settings", func(t *testing.T) {
		tp := newTestPipeline(t, files, echoGenerator(1))

		_, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
		require.NoError(t, err)

		assert.Equal(t, "./output/sft_dataset.jsonl", tp.writer.path)
		assert.False(t, tp.writer.overwrite)
	})

	t.Run("explicit path and overwrite", func(t *testing.T) {
		tp := newTestPipeline(t, files, echoGenerator(1))

		_, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{
			OutputPath: "/tmp/custom.jsonl",
			Overwrite:  true,
		})
		require.NoError(t, err)

		assert.Equal(t, "/tmp/custom.jsonl", tp.writer.path)
		assert.True(t, tp.writer.overwrite)
	})
}

func TestPipeline_Run_SavesRunHistory(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}
	tp := newTestPipeline(t, files, echoGenerator(1))

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	require.NoError(t, err)

	require.Len(t, tp.runStore.saved, 1)
	assert.Equal(t, report.RunID, tp.runStore.saved[0].RunID)
}

func TestPipeline_Run_RunHistoryFailureIsNotFatal(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}
	tp := newTestPipeline(t, files, echoGenerator(1))
	tp.runStore.err = errors.New("database locked")

	report, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesProcessed)
}

func TestPipeline_Run_Events(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}
	tp := newTestPipeline(t, files, echoGenerator(1), func(s *domain.AppSettings) {
		s.Generation.QuestionsPerChunk = 1
	})

	var mu sync.Mutex
	var kinds []domain.RunEventKind
	opts := driving.RunOptions{OnEvent: func(event domain.RunEvent) {
		mu.Lock()
		kinds = append(kinds, event.Kind)
		mu.Unlock()
	}}

	_, err := tp.pipeline.Run(context.Background(), "/data", opts)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, domain.EventRunStarted, kinds[0])
	assert.Equal(t, domain.EventRunFinished, kinds[len(kinds)-1])
	assert.Contains(t, kinds, domain.EventFileStarted)
	assert.Contains(t, kinds, domain.EventPairWritten)
	assert.Contains(t, kinds, domain.EventChunkFinished)
	assert.Contains(t, kinds, domain.EventFileFinished)
}

func TestPipeline_Run_RejectsConcurrentRun(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	generator := &stubGenerator{
		questions: func(domain.Chunk, int) ([]string, error) {
			once.Do(func() { close(entered) })
			<-release
			return []string{"q?"}, nil
		},
		answers: func(domain.Chunk, string) (string, error) {
			return "a.", nil
		},
	}
	tp := newTestPipeline(t, files, generator)

	done := make(chan error, 1)
	go func() {
		_, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
		done <- err
	}()

	<-entered
	_, err := tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)

	// The guard clears once the run finishes.
	_, err = tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
	assert.NoError(t, err)
}

func TestPipeline_Run_Cancellation(t *testing.T) {
	files := map[string]string{
		"/data/one.txt":   "First.",
		"/data/two.txt":   "Second.",
		"/data/three.txt": "Third.",
	}

	generator := &blockingGenerator{entered: make(chan struct{})}
	tp := newTestPipeline(t, files, generator, func(s *domain.AppSettings) {
		s.Generation.FileWorkers = 1
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-generator.entered
		cancel()
	}()

	report, err := tp.pipeline.Run(ctx, "/data", driving.RunOptions{})

	// Cancellation mid-run still yields a report; files that never ran
	// are recorded as failed, and nothing hangs.
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.FilesDiscovered)
	assert.Equal(t, 0, report.FilesProcessed)
	assert.Equal(t, 3, report.FilesFailed)
	assert.Equal(t, 0, report.PairsWritten)
	assert.False(t, tp.pipeline.Status().Running)
}

func TestPipeline_Status(t *testing.T) {
	files := map[string]string{"/data/doc.txt": "Body."}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	generator := &stubGenerator{
		questions: func(domain.Chunk, int) ([]string, error) {
			once.Do(func() { close(entered) })
			<-release
			return []string{"q?"}, nil
		},
		answers: func(domain.Chunk, string) (string, error) {
			return "a.", nil
		},
	}
	tp := newTestPipeline(t, files, generator)

	assert.False(t, tp.pipeline.Status().Running)

	done := make(chan struct{})
	go func() {
		_, _ = tp.pipeline.Run(context.Background(), "/data", driving.RunOptions{})
		close(done)
	}()

	<-entered
	status := tp.pipeline.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.TotalFiles)

	close(release)
	<-done

	status = tp.pipeline.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 1, status.FilesDone)
	assert.Equal(t, 1, status.PairsWritten)
}

func TestPipeline_SupportedFormats(t *testing.T) {
	tp := newTestPipeline(t, nil, echoGenerator(1))

	formats := tp.pipeline.SupportedFormats()

	// The content extractor claims every format.
	assert.ElementsMatch(t, domain.AllFormats(), formats)
}
