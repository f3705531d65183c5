package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
)

// GenerateInput is the input schema for the generate_dataset tool.
type GenerateInput struct {
	Path              string `json:"path" jsonschema:"file or directory containing documents to convert"`
	Output            string `json:"output,omitempty" jsonschema:"output JSONL path (defaults to the configured dataset path)"`
	Overwrite         bool   `json:"overwrite,omitempty" jsonschema:"replace the output file instead of appending to it"`
	QuestionsPerChunk int    `json:"questions_per_chunk,omitempty" jsonschema:"override the configured number of questions per chunk"`
	ChunkSize         int    `json:"chunk_size,omitempty" jsonschema:"override the configured chunk size in characters"`
}

// FormatsInput is the input schema for the list_supported_formats tool.
type FormatsInput struct{}

// LastReportInput is the input schema for the last_report tool.
type LastReportInput struct{}

// ReportOutput summarises a run for tool output.
type ReportOutput struct {
	RunID           string              `json:"run_id"`
	InputPath       string              `json:"input_path"`
	OutputPath      string              `json:"output_path"`
	StartedAt       string              `json:"started_at"`
	Duration        string              `json:"duration"`
	FilesDiscovered int                 `json:"files_discovered"`
	FilesProcessed  int                 `json:"files_processed"`
	FilesFailed     int                 `json:"files_failed"`
	FilesSkipped    int                 `json:"files_skipped"`
	ChunksFailed    int                 `json:"chunks_failed,omitempty"`
	PairsWritten    int                 `json:"pairs_written"`
	Failures        []FileFailureOutput `json:"failures,omitempty"`
}

// FileFailureOutput describes one failed file.
type FileFailureOutput struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// FormatsOutput is the output schema for the list_supported_formats tool.
type FormatsOutput struct {
	Formats []FormatOutput `json:"formats"`
	Count   int            `json:"count"`
}

// FormatOutput describes a single supported format.
type FormatOutput struct {
	Format         string `json:"format"`
	Extension      string `json:"extension"`
	Description    string `json:"description"`
	RequiresParser bool   `json:"requires_parser,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_dataset",
		Description: "Convert documents under a path into an SFT dataset in JSONL format",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_supported_formats",
		Description: "List the document formats the pipeline can read",
	}, s.handleListFormats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "last_report",
		Description: "Return the report of the most recent dataset generation run",
	}, s.handleLastReport)
}

// handleGenerate handles the generate_dataset tool invocation.
// It resolves settings, applies per-call overrides, and runs the full
// pipeline. The call blocks until the run finishes.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	if input.Path == "" {
		return nil, ReportOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, ReportOutput{}, fmt.Errorf("loading settings: %w", err)
	}
	if input.QuestionsPerChunk > 0 {
		settings.Generation.QuestionsPerChunk = input.QuestionsPerChunk
	}
	if input.ChunkSize > 0 {
		settings.Generation.ChunkSize = input.ChunkSize
	}
	if err := settings.Validate(); err != nil {
		return nil, ReportOutput{}, err
	}

	pipe, err := s.ports.BuildPipeline(*settings)
	if err != nil {
		return nil, ReportOutput{}, fmt.Errorf("building pipeline: %w", err)
	}

	report, err := pipe.Run(ctx, input.Path, driving.RunOptions{
		OutputPath: input.Output,
		Overwrite:  input.Overwrite,
	})
	if err != nil {
		return nil, ReportOutput{}, err
	}

	s.setLastReport(report)

	return nil, reportOutput(report), nil
}

// handleListFormats handles the list_supported_formats tool invocation.
func (s *Server) handleListFormats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ FormatsInput,
) (*mcp.CallToolResult, FormatsOutput, error) {
	formats := domain.AllFormats()

	output := FormatsOutput{
		Formats: make([]FormatOutput, len(formats)),
		Count:   len(formats),
	}

	for i, f := range formats {
		output.Formats[i] = FormatOutput{
			Format:         f.String(),
			Extension:      f.Extension(),
			Description:    f.Description(),
			RequiresParser: f.RequiresParser(),
		}
	}

	return nil, output, nil
}

// handleLastReport handles the last_report tool invocation.
// It prefers the report of a run completed by this server and falls back
// to the most recent entry in the run history.
func (s *Server) handleLastReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ LastReportInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	if report := s.getLastReport(); report != nil {
		return nil, reportOutput(report), nil
	}

	if s.ports.Runs != nil {
		reports, err := s.ports.Runs.List(ctx, 1)
		if err == nil && len(reports) > 0 {
			full, err := s.ports.Runs.Get(ctx, reports[0].RunID)
			if err == nil {
				return nil, reportOutput(full), nil
			}
			return nil, reportOutput(&reports[0]), nil
		}
	}

	return nil, ReportOutput{}, ErrNoReport
}

// reportOutput converts a domain report into the tool output shape.
func reportOutput(r *domain.Report) ReportOutput {
	out := ReportOutput{
		RunID:           r.RunID,
		InputPath:       r.InputPath,
		OutputPath:      r.OutputPath,
		StartedAt:       r.StartedAt.Format(time.RFC3339),
		Duration:        r.Duration.Round(time.Millisecond).String(),
		FilesDiscovered: r.FilesDiscovered,
		FilesProcessed:  r.FilesProcessed,
		FilesFailed:     r.FilesFailed,
		FilesSkipped:    r.FilesSkipped,
		ChunksFailed:    r.ChunksFailed,
		PairsWritten:    r.PairsWritten,
	}

	for i := range r.Files {
		f := &r.Files[i]
		if f.State != domain.StateFailed {
			continue
		}
		out.Failures = append(out.Failures, FileFailureOutput{
			Path:  f.Path,
			Stage: f.Stage.String(),
			Error: f.Error,
		})
	}

	return out
}
