package domain

import "time"

// FileState tracks a file's progress through the pipeline.
// The happy path is Discovered -> Extracted -> Chunked -> Generating ->
// Written. Failed is reachable from every non-terminal state; Skipped
// marks files that produced no work (empty text, zero chunks).
type FileState string

// Pipeline file states.
const (
	// StateDiscovered means the file was found and format-checked.
	StateDiscovered FileState = "discovered"

	// StateExtracted means text extraction succeeded.
	StateExtracted FileState = "extracted"

	// StateChunked means the text was split into chunks.
	StateChunked FileState = "chunked"

	// StateGenerating means QA generation is in progress.
	StateGenerating FileState = "generating"

	// StateWritten means at least one QA pair reached the output file.
	StateWritten FileState = "written"

	// StateSkipped means the file produced nothing to generate from.
	StateSkipped FileState = "skipped"

	// StateFailed means the file failed at some stage.
	StateFailed FileState = "failed"
)

// IsTerminal returns true for states the pipeline never leaves.
func (s FileState) IsTerminal() bool {
	return s == StateWritten || s == StateSkipped || s == StateFailed
}

// String returns the string representation.
func (s FileState) String() string {
	return string(s)
}

// Stage identifies the pipeline stage where a failure occurred.
type Stage string

// Pipeline stages.
const (
	// StageExtract is text extraction.
	StageExtract Stage = "extract"

	// StageChunk is text chunking.
	StageChunk Stage = "chunk"

	// StageGenerate is question/answer generation.
	StageGenerate Stage = "generate"

	// StageWrite is dataset output writing.
	StageWrite Stage = "write"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// FileResult records the outcome of one file's journey through a run.
type FileResult struct {
	// Path is the file path.
	Path string

	// State is the terminal state the file reached.
	State FileState

	// Stage is the stage where failure occurred. Empty unless failed.
	Stage Stage

	// Error is the failure description. Empty unless failed.
	Error string

	// ChunksTotal is the number of chunks produced from the file.
	ChunksTotal int

	// ChunksFailed is the number of chunks that contributed zero pairs.
	ChunksFailed int

	// PairsWritten is the number of QA pairs written for this file.
	PairsWritten int

	// Duration is the wall time spent on this file.
	Duration time.Duration
}

// Report summarises a pipeline run.
// A run always completes with a report; only startup validation failures
// and output-write failures abort earlier.
type Report struct {
	// RunID is the unique identifier for the run.
	RunID string

	// InputPath is the file or directory the run processed.
	InputPath string

	// OutputPath is the dataset file the run appended to.
	OutputPath string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the total wall time of the run.
	Duration time.Duration

	// FilesDiscovered counts supported files found.
	FilesDiscovered int

	// FilesProcessed counts files that reached Written.
	FilesProcessed int

	// FilesFailed counts files that reached Failed.
	FilesFailed int

	// FilesSkipped counts files that reached Skipped.
	FilesSkipped int

	// ChunksProcessed counts chunks that produced at least one pair.
	ChunksProcessed int

	// ChunksFailed counts chunks that produced zero pairs.
	ChunksFailed int

	// PairsWritten counts QA pairs appended to the output file.
	PairsWritten int

	// Files holds the per-file outcomes in discovery order.
	Files []FileResult
}

// HasFailures returns true when any file or chunk failed.
func (r *Report) HasFailures() bool {
	return r.FilesFailed > 0 || r.ChunksFailed > 0
}

// RunEventKind identifies a progress event emitted during a run.
type RunEventKind string

// Progress event kinds.
const (
	// EventRunStarted fires once after discovery completes.
	EventRunStarted RunEventKind = "run_started"

	// EventFileStarted fires when a file begins processing.
	EventFileStarted RunEventKind = "file_started"

	// EventFileFinished fires when a file reaches a terminal state.
	EventFileFinished RunEventKind = "file_finished"

	// EventChunkFinished fires when a chunk finishes generation.
	EventChunkFinished RunEventKind = "chunk_finished"

	// EventPairWritten fires after a QA pair is appended to the output.
	EventPairWritten RunEventKind = "pair_written"

	// EventRunFinished fires once with the final report attached.
	EventRunFinished RunEventKind = "run_finished"
)

// RunEvent is a progress notification from the pipeline.
// Consumers must not block; the pipeline drops events when the sink lags.
type RunEvent struct {
	// Kind is the event type.
	Kind RunEventKind

	// Path is the file concerned, when applicable.
	Path string

	// File is the terminal file result for EventFileFinished.
	File *FileResult

	// ChunkIndex is the chunk concerned for EventChunkFinished.
	ChunkIndex int

	// Pairs is the pair count carried by the event, when applicable.
	Pairs int

	// TotalFiles is the discovered file count for EventRunStarted.
	TotalFiles int

	// Report is the final report for EventRunFinished.
	Report *Report
}
