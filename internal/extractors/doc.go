// Package extractors provides implementations of the Extractor interface
// for various document formats. Each extractor knows how to pull text
// content out of a specific file format.
//
// Extractors are registered with the ExtractorRegistry at startup. The
// registry tries them in priority order per format, so the remote parsing
// service (when configured) runs before the local format handlers.
package extractors
