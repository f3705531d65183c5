// Package messages defines Bubbletea message types for the TUI.
// Messages represent run progress events flowing through the Elm architecture.
package messages

import (
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// RunStarted signals that discovery finished and processing began.
type RunStarted struct {
	TotalFiles int
}

// FileStarted signals that a file began processing.
type FileStarted struct {
	Path string
}

// FileFinished carries a file's terminal result.
type FileFinished struct {
	Result domain.FileResult
}

// ChunkFinished signals that one chunk finished generation.
type ChunkFinished struct {
	Path  string
	Pairs int
}

// PairWritten signals that a QA pair reached the output file.
type PairWritten struct {
	Path string
}

// RunCompleted carries the final report once the pipeline returns.
// Err is set when the run aborted before producing a report.
type RunCompleted struct {
	Report *domain.Report
	Err    error
}

// CancelRequested signals that the user asked to stop the run.
type CancelRequested struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
