package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// QAGenerator produces the question and answer calls the pipeline
// schedules. Satisfied by *Generator.
type QAGenerator interface {
	GenerateQuestions(ctx context.Context, chunk domain.Chunk, n int) ([]string, error)
	GenerateAnswer(ctx context.Context, chunk domain.Chunk, question string) (string, error)
}

var _ QAGenerator = (*Generator)(nil)

// Pipeline converts documents into SFT dataset records: discover,
// extract, chunk, generate, append. Files are processed concurrently
// under a worker bound; one failing file never aborts the batch.
type Pipeline struct {
	connectors driven.ConnectorFactory
	registry   driven.ExtractorRegistry
	processors driven.PostProcessorPipeline
	generator  QAGenerator
	writers    driven.DatasetWriterFactory
	runStore   driven.RunStore
	settings   domain.AppSettings

	// Status tracking
	mu     sync.RWMutex
	status driving.RunStatus
}

// NewPipeline creates the conversion pipeline.
// The run store is optional; nil disables run history.
func NewPipeline(
	connectors driven.ConnectorFactory,
	registry driven.ExtractorRegistry,
	processors driven.PostProcessorPipeline,
	generator QAGenerator,
	writers driven.DatasetWriterFactory,
	runStore driven.RunStore,
	settings domain.AppSettings,
) *Pipeline {
	return &Pipeline{
		connectors: connectors,
		registry:   registry,
		processors: processors,
		generator:  generator,
		writers:    writers,
		runStore:   runStore,
		settings:   settings,
	}
}

// Run processes a file or directory into the dataset and returns the
// report. Individual file failures are recorded, not raised; only
// input validation and output-write failures return an error.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (p *Pipeline) Run(ctx context.Context, input string, opts driving.RunOptions) (*domain.Report, error) {
	if !p.tryStart() {
		return nil, domain.ErrRunInProgress
	}
	defer p.finishRun()

	runID := uuid.New().String()
	started := time.Now()

	// 1. OPEN AND VALIDATE THE INPUT
	connector, err := p.connectors.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer connector.Close()

	if err := connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}

	// 2. DISCOVER SOURCE DOCUMENTS
	docs, err := p.discover(ctx, connector)
	if err != nil {
		return nil, err
	}

	p.setDiscovered(len(docs))
	p.emit(opts, domain.RunEvent{Kind: domain.EventRunStarted, TotalFiles: len(docs)})
	logger.Info("run started", "run", runID, "input", input, "files", len(docs))

	// 3. OPEN THE DATASET WRITER
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = p.settings.Output.DefaultPath()
	}
	writer, err := p.writers.Create(outputPath, opts.Overwrite)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOutputWrite, err)
	}
	defer writer.Close()

	// 4. PROCESS FILES WITH BOUNDED WORKERS
	workers := p.settings.Generation.FileWorkers
	if workers < 1 {
		workers = 1
	}

	results := make([]domain.FileResult, len(docs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for idx := range docs {
		idx := idx
		group.Go(func() error {
			result, fatal := p.processFile(groupCtx, connector, &docs[idx], writer, opts)
			results[idx] = result
			p.noteFileDone(result)
			p.emit(opts, domain.RunEvent{Kind: domain.EventFileFinished, Path: result.Path, File: &results[idx]})
			return fatal
		})
	}
	fatal := group.Wait()

	// 5. BUILD THE REPORT
	report := p.buildReport(runID, input, writer.Path(), started, results)

	if fatal != nil {
		logger.Error("run aborted", "run", runID, "error", fatal)
		return nil, fatal
	}

	// 6. PERSIST RUN HISTORY
	if p.runStore != nil {
		if err := p.runStore.SaveReport(ctx, report); err != nil {
			logger.Warn("run history not saved", "run", runID, "error", err)
		}
	}

	p.emit(opts, domain.RunEvent{Kind: domain.EventRunFinished, Report: report})
	logger.Info("run finished", "run", runID,
		"processed", report.FilesProcessed, "failed", report.FilesFailed,
		"skipped", report.FilesSkipped, "pairs", report.PairsWritten,
		"duration", report.Duration)
	return report, nil
}

// Status returns a copy of the current progress counters. After a run
// finishes the final counters remain readable with Running false.
func (p *Pipeline) Status() driving.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// SupportedFormats returns the formats the pipeline can process.
func (p *Pipeline) SupportedFormats() []domain.FileFormat {
	return p.registry.SupportedFormats()
}

// discover drains the connector's document stream into discovery order.
func (p *Pipeline) discover(ctx context.Context, connector driven.Connector) ([]domain.SourceDocument, error) {
	docsCh, errsCh := connector.Discover(ctx)

	var docs []domain.SourceDocument
	var errs []error
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, err)

		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			docs = append(docs, doc)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("discover documents: %w", errors.Join(errs...))
	}
	return docs, nil
}

// processFile walks one document through the pipeline state machine.
// The returned error is nil unless the failure is fatal for the whole
// run (output write).
func (p *Pipeline) processFile(
	ctx context.Context,
	connector driven.Connector,
	src *domain.SourceDocument,
	writer driven.DatasetWriter,
	opts driving.RunOptions,
) (domain.FileResult, error) {
	started := time.Now()
	result := domain.FileResult{Path: src.Path, State: domain.StateDiscovered}

	if err := ctx.Err(); err != nil {
		return p.failFile(result, "", err, started), nil
	}

	p.emit(opts, domain.RunEvent{Kind: domain.EventFileStarted, Path: src.Path})
	logger.Debug("processing file", "file", src.Path, "format", src.Format)

	// 1. LOAD CONTENT
	if err := connector.Load(ctx, src); err != nil {
		return p.failFile(result, domain.StageExtract, err, started), nil
	}

	// 2. EXTRACT TEXT
	extracted, err := p.registry.Extract(ctx, src)
	if err != nil {
		return p.failFile(result, domain.StageExtract, err, started), nil
	}
	result.State = domain.StateExtracted
	src.Content = nil // release the raw bytes

	// 3. SKIP DOCUMENTS WITH NO TEXT
	if extracted.IsEmpty() {
		logger.Info("skipping file", "file", src.Path, "reason", domain.ErrEmptyDocument)
		result.State = domain.StateSkipped
		result.Duration = time.Since(started)
		return result, nil
	}

	// 4. CLEAN AND CHUNK
	chunks, err := p.processors.Process(ctx, extracted)
	if err != nil {
		return p.failFile(result, domain.StageChunk, err, started), nil
	}
	result.State = domain.StateChunked
	result.ChunksTotal = len(chunks)

	if len(chunks) == 0 {
		logger.Info("skipping file", "file", src.Path, "reason", "no chunks after processing")
		result.State = domain.StateSkipped
		result.Duration = time.Since(started)
		return result, nil
	}

	// 5. GENERATE AND WRITE PAIRS
	result.State = domain.StateGenerating
	pairs, failedChunks, fatal := p.generateFile(ctx, src, chunks, writer, opts)
	result.PairsWritten = pairs
	result.ChunksFailed = failedChunks
	result.Duration = time.Since(started)

	if fatal != nil {
		result.State = domain.StateFailed
		result.Stage = domain.StageWrite
		result.Error = fatal.Error()
		return result, fatal
	}
	if err := ctx.Err(); err != nil {
		return p.failFile(result, domain.StageGenerate, err, started), nil
	}
	if failedChunks == len(chunks) {
		result.State = domain.StateFailed
		result.Stage = domain.StageGenerate
		result.Error = "every chunk failed generation"
		logger.Warn("file failed", "file", src.Path, "stage", domain.StageGenerate, "chunks", len(chunks))
		return result, nil
	}

	result.State = domain.StateWritten
	logger.Info("file done", "file", src.Path,
		"chunks", len(chunks), "failed_chunks", failedChunks, "pairs", pairs)
	return result, nil
}

// generateFile runs QA generation chunk by chunk. A chunk that yields
// no pairs counts as failed and the rest of the file continues.
func (p *Pipeline) generateFile(
	ctx context.Context,
	src *domain.SourceDocument,
	chunks []domain.Chunk,
	writer driven.DatasetWriter,
	opts driving.RunOptions,
) (pairs, failedChunks int, fatal error) {
	sourceFile := filepath.Base(src.Path)
	perChunk := p.settings.Generation.QuestionsPerChunk

	for i := range chunks {
		if ctx.Err() != nil {
			failedChunks += len(chunks) - i
			return pairs, failedChunks, nil
		}
		chunk := chunks[i]

		questions, err := p.generator.GenerateQuestions(ctx, chunk, perChunk)
		if err != nil {
			logger.Warn("chunk produced no questions",
				"file", sourceFile, "chunk", chunk.Index, "error", err)
			failedChunks++
			p.noteChunkFailed()
			p.emit(opts, domain.RunEvent{Kind: domain.EventChunkFinished, Path: src.Path, ChunkIndex: chunk.Index})
			continue
		}

		written, err := p.answerQuestions(ctx, chunk, questions, sourceFile, writer, opts)
		pairs += written
		if err != nil {
			return pairs, failedChunks, err
		}
		if written == 0 {
			failedChunks++
			p.noteChunkFailed()
		}
		p.emit(opts, domain.RunEvent{Kind: domain.EventChunkFinished, Path: src.Path, ChunkIndex: chunk.Index, Pairs: written})
	}
	return pairs, failedChunks, nil
}

// answerQuestions fans the chunk's questions out to the answer workers
// and appends one record per successful answer. Write order follows
// completion, not question order. A failed answer drops its question;
// a failed append is fatal.
func (p *Pipeline) answerQuestions(
	ctx context.Context,
	chunk domain.Chunk,
	questions []string,
	sourceFile string,
	writer driven.DatasetWriter,
	opts driving.RunOptions,
) (int, error) {
	workers := p.settings.Generation.AnswerWorkers
	if workers < 1 {
		workers = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	written := make([]bool, len(questions))
	for idx := range questions {
		idx := idx
		group.Go(func() error {
			question := questions[idx]
			answer, err := p.generator.GenerateAnswer(groupCtx, chunk, question)
			if err != nil {
				logger.Warn("question skipped",
					"file", sourceFile, "chunk", chunk.Index, "error", err)
				return nil
			}

			pair := domain.QAPair{
				Instruction: question,
				Input:       "",
				Output:      answer,
				SourceFile:  sourceFile,
			}
			if err := writer.Append(groupCtx, &pair); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrOutputWrite, err)
			}

			written[idx] = true
			p.notePair()
			p.emit(opts, domain.RunEvent{Kind: domain.EventPairWritten, Path: sourceFile, ChunkIndex: chunk.Index, Pairs: 1})
			return nil
		})
	}
	err := group.Wait()

	count := 0
	for _, ok := range written {
		if ok {
			count++
		}
	}
	return count, err
}

// failFile marks a terminal failure and logs it.
func (p *Pipeline) failFile(result domain.FileResult, stage domain.Stage, err error, started time.Time) domain.FileResult {
	logger.Warn("file failed", "file", result.Path, "stage", stage, "error", err)
	result.State = domain.StateFailed
	result.Stage = stage
	result.Error = err.Error()
	result.Duration = time.Since(started)
	return result
}

// buildReport aggregates per-file outcomes into the run report.
func (p *Pipeline) buildReport(runID, input, output string, started time.Time, results []domain.FileResult) *domain.Report {
	report := &domain.Report{
		RunID:           runID,
		InputPath:       input,
		OutputPath:      output,
		StartedAt:       started,
		Duration:        time.Since(started),
		FilesDiscovered: len(results),
		Files:           results,
	}
	for i := range results {
		r := &results[i]
		switch r.State {
		case domain.StateWritten:
			report.FilesProcessed++
		case domain.StateFailed:
			report.FilesFailed++
		case domain.StateSkipped:
			report.FilesSkipped++
		}
		report.ChunksProcessed += r.ChunksTotal - r.ChunksFailed
		report.ChunksFailed += r.ChunksFailed
		report.PairsWritten += r.PairsWritten
	}
	return report
}

func (p *Pipeline) emit(opts driving.RunOptions, event domain.RunEvent) {
	if opts.OnEvent != nil {
		opts.OnEvent(event)
	}
}

func (p *Pipeline) tryStart() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Running {
		return false
	}
	p.status = driving.RunStatus{Running: true}
	return true
}

func (p *Pipeline) finishRun() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Running = false
}

func (p *Pipeline) setDiscovered(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.TotalFiles = total
}

func (p *Pipeline) noteFileDone(result domain.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.FilesDone++
	if result.State == domain.StateFailed {
		p.status.ErrorCount++
	}
}

func (p *Pipeline) noteChunkFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.ErrorCount++
}

func (p *Pipeline) notePair() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.PairsWritten++
}
