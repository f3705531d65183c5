// Package domain defines the core business entities for sftgen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: A discovered input file with raw bytes
//   - ExtractedText: Normalised text produced from one source file
//   - Chunk: A bounded segment of extracted text used for generation
//   - QAPair: One generated instruction/output record
//   - Report: The outcome of a pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
