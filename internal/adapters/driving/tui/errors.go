package tui

import "errors"

// ErrMissingPipeline is returned when the pipeline is not provided.
var ErrMissingPipeline = errors.New("tui: pipeline is required")

// ErrMissingInput is returned when the input path is not provided.
var ErrMissingInput = errors.New("tui: input path is required")
