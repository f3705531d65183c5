package driven

import (
	"context"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// DocumentParser converts raw document bytes into text through an
// external structured-parsing service. Higher fidelity than local
// decoding, preferred whenever configured.
type DocumentParser interface {
	// Parse uploads the document and returns the extracted text.
	// Bounded by the configured timeout; any transport error, non-2xx
	// response, or timeout is returned for the caller to fall back on.
	Parse(ctx context.Context, src *domain.SourceDocument) (string, error)

	// Ping checks the service is reachable.
	Ping(ctx context.Context) error
}
