package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sftgen resources.
	uriScheme = "sftgen://"

	// runListLimit caps the runs resource listing.
	runListLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for supported formats.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "formats",
		Name:        "formats",
		Description: "Document formats the pipeline can read",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)

	// Static resource for run history.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recorded dataset generation runs, most recent first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for a single run with per-file outcomes.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run-report",
		Description: "Full report of a specific run including per-file outcomes",
		MIMEType:    "application/json",
	}, s.handleRunDetailResource)
}

// handleFormatsResource returns the supported format list.
func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type formatInfo struct {
		Format         string `json:"format"`
		Extension      string `json:"extension"`
		Description    string `json:"description"`
		RequiresParser bool   `json:"requires_parser"`
	}

	formats := domain.AllFormats()
	infos := make([]formatInfo, len(formats))
	for i, f := range formats {
		infos[i] = formatInfo{
			Format:         f.String(),
			Extension:      f.Extension(),
			Description:    f.Description(),
			RequiresParser: f.RequiresParser(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling formats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRunsResource returns summaries of recorded runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	reports, err := s.ports.Runs.List(ctx, runListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	// Build simplified run list.
	type runInfo struct {
		RunID        string `json:"run_id"`
		StartedAt    string `json:"started_at"`
		InputPath    string `json:"input_path"`
		OutputPath   string `json:"output_path"`
		Files        int    `json:"files"`
		Failed       int    `json:"failed"`
		PairsWritten int    `json:"pairs_written"`
		Duration     string `json:"duration"`
	}

	infos := make([]runInfo, len(reports))
	for i := range reports {
		r := &reports[i]
		infos[i] = runInfo{
			RunID:        r.RunID,
			StartedAt:    r.StartedAt.Format(time.RFC3339),
			InputPath:    r.InputPath,
			OutputPath:   r.OutputPath,
			Files:        r.FilesDiscovered,
			Failed:       r.FilesFailed,
			PairsWritten: r.PairsWritten,
			Duration:     r.Duration.Round(time.Millisecond).String(),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRunDetailResource returns the full report of a specific run.
func (s *Server) handleRunDetailResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: sftgen://runs/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Runs.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting run: %w", err)
	}

	type fileInfo struct {
		Path         string `json:"path"`
		State        string `json:"state"`
		Stage        string `json:"stage,omitempty"`
		Error        string `json:"error,omitempty"`
		PairsWritten int    `json:"pairs_written"`
		Duration     string `json:"duration"`
	}

	type runDetail struct {
		RunID           string     `json:"run_id"`
		InputPath       string     `json:"input_path"`
		OutputPath      string     `json:"output_path"`
		StartedAt       string     `json:"started_at"`
		Duration        string     `json:"duration"`
		FilesDiscovered int        `json:"files_discovered"`
		FilesProcessed  int        `json:"files_processed"`
		FilesFailed     int        `json:"files_failed"`
		FilesSkipped    int        `json:"files_skipped"`
		ChunksFailed    int        `json:"chunks_failed"`
		PairsWritten    int        `json:"pairs_written"`
		Files           []fileInfo `json:"files"`
	}

	detail := runDetail{
		RunID:           report.RunID,
		InputPath:       report.InputPath,
		OutputPath:      report.OutputPath,
		StartedAt:       report.StartedAt.Format(time.RFC3339),
		Duration:        report.Duration.Round(time.Millisecond).String(),
		FilesDiscovered: report.FilesDiscovered,
		FilesProcessed:  report.FilesProcessed,
		FilesFailed:     report.FilesFailed,
		FilesSkipped:    report.FilesSkipped,
		ChunksFailed:    report.ChunksFailed,
		PairsWritten:    report.PairsWritten,
		Files:           make([]fileInfo, len(report.Files)),
	}

	for i := range report.Files {
		f := &report.Files[i]
		detail.Files[i] = fileInfo{
			Path:         f.Path,
			State:        f.State.String(),
			Stage:        f.Stage.String(),
			Error:        f.Error,
			PairsWritten: f.PairsWritten,
			Duration:     f.Duration.Round(time.Millisecond).String(),
		}
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like sftgen://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
