// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Discovers source files from an input path
//   - Extractor: Turns one source file into normalised text
//   - ExtractorRegistry: Selects the extraction strategy chain
//   - PostProcessorPipeline: Cleans and chunks extracted text
//   - LLMService: Chat-completion transport for generation
//   - DatasetWriter: Append-only JSONL output
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentParser: Remote structured parsing. Without it, extraction
//     uses local per-format decoding only.
//   - RunStore: Run history ledger. Without it, runs are not recorded.
//   - PromptStore: Custom prompt templates. Without it, embedded
//     defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
