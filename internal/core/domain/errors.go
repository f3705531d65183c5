package domain

import (
	"context"
	"errors"
	"net"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	// Single-file mode rejects these; directory mode skips them.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates every applicable extraction strategy
	// failed for a file. File-level, not retried further.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmptyDocument indicates extraction produced no usable text.
	// The file degrades to zero chunks and is recorded as skipped.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrLLMCall indicates a generation call exhausted its retries.
	// Chunk- or question-level; the unit contributes zero pairs.
	ErrLLMCall = errors.New("llm call failed")

	// ErrNoQuestions indicates the model returned no usable questions
	// for a chunk. The chunk contributes zero pairs.
	ErrNoQuestions = errors.New("no questions generated")

	// ErrEmptyCompletion indicates the model returned an empty or
	// malformed completion. Not retried.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrOutputWrite indicates the dataset file cannot be written.
	// Fatal for the whole run: no dataset can be produced.
	ErrOutputWrite = errors.New("dataset write failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generation cannot run without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrParserUnavailable indicates the remote document parser is not
	// configured or unreachable. Extraction falls back to local decoding.
	ErrParserUnavailable = errors.New("document parser unavailable")

	// ErrRunInProgress indicates a pipeline run is already active.
	ErrRunInProgress = errors.New("run in progress")

	// ErrConnectorClosed indicates the connector was used after Close.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	// Treated as transient by the retry policy.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a transient upstream failure such
	// as a 5xx response or a dropped connection. Treated as transient by
	// the retry policy.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// IsRetryable reports whether err is worth retrying. Only transient
// failures qualify: rate limits, upstream 5xx conditions, timeouts and
// network errors. Cancellation and malformed requests are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
