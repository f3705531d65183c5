package domain

import (
	"path/filepath"
	"strings"
)

// FileFormat identifies a supported source document format.
type FileFormat string

// Supported source formats.
const (
	// FormatPDF is a PDF document.
	FormatPDF FileFormat = "pdf"

	// FormatDOCX is an Office Open XML word-processing document.
	FormatDOCX FileFormat = "docx"

	// FormatDOC is a legacy binary Word document.
	// Decodable only through the remote parsing service.
	FormatDOC FileFormat = "doc"

	// FormatPPTX is an Office Open XML presentation.
	FormatPPTX FileFormat = "pptx"

	// FormatPPT is a legacy binary PowerPoint presentation.
	// Decodable only through the remote parsing service.
	FormatPPT FileFormat = "ppt"

	// FormatText is a plain text file.
	FormatText FileFormat = "txt"

	// FormatMarkdown is a Markdown file.
	FormatMarkdown FileFormat = "md"
)

// FormatFromPath detects the format from a file path's extension.
// Returns the format and true, or empty format and false when the
// extension is not in the supported set.
func FormatFromPath(path string) (FileFormat, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f := FileFormat(ext)
	if !f.IsValid() {
		return "", false
	}
	return f, true
}

// IsValid returns true if the format is recognised.
func (f FileFormat) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatDOC, FormatPPTX, FormatPPT, FormatText, FormatMarkdown:
		return true
	default:
		return false
	}
}

// RequiresParser returns true for legacy binary formats that have no
// local decoder and depend on the remote parsing service.
func (f FileFormat) RequiresParser() bool {
	return f == FormatDOC || f == FormatPPT
}

// Extension returns the file extension including the leading dot.
func (f FileFormat) Extension() string {
	return "." + string(f)
}

// String returns the string representation.
func (f FileFormat) String() string {
	return string(f)
}

// Description returns a human-readable description of the format.
func (f FileFormat) Description() string {
	switch f {
	case FormatPDF:
		return "PDF document"
	case FormatDOCX:
		return "Word document (Office Open XML)"
	case FormatDOC:
		return "Word document (legacy binary)"
	case FormatPPTX:
		return "PowerPoint presentation (Office Open XML)"
	case FormatPPT:
		return "PowerPoint presentation (legacy binary)"
	case FormatText:
		return "Plain text"
	case FormatMarkdown:
		return "Markdown"
	default:
		return unknownDescription
	}
}

// AllFormats returns every supported format in extension order.
func AllFormats() []FileFormat {
	return []FileFormat{
		FormatPDF,
		FormatDOCX,
		FormatDOC,
		FormatPPTX,
		FormatPPT,
		FormatText,
		FormatMarkdown,
	}
}

// SupportedExtensions returns the supported extensions including dots,
// in the order of AllFormats.
func SupportedExtensions() []string {
	formats := AllFormats()
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Extension()
	}
	return exts
}
