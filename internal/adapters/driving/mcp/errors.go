// Package mcp provides an MCP (Model Context Protocol) server adapter for sftgen.
// It lets AI assistants drive dataset generation and inspect run history.
package mcp

import "errors"

// ErrMissingSettingsService is returned when the settings service is not provided.
var ErrMissingSettingsService = errors.New("mcp: settings service is required")

// ErrMissingPipelineBuilder is returned when the pipeline builder is not provided.
var ErrMissingPipelineBuilder = errors.New("mcp: pipeline builder is required")

// ErrNoReport is returned when no run report is available yet.
var ErrNoReport = errors.New("mcp: no run recorded yet")
