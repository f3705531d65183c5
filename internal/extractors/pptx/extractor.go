package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// slideFile matches slide part names inside the archive.
var slideFile = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extractor handles PPTX presentations.
type Extractor struct{}

// New creates a new PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pptx"
}

// SupportedFormats returns the file formats this extractor handles.
func (e *Extractor) SupportedFormats() []domain.FileFormat {
	return []domain.FileFormat{domain.FormatPPTX}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract converts a PPTX presentation to extracted text.
// Each non-empty slide contributes a "[Slide N]" header followed by its
// shape text, one line per paragraph, with table rows joined by " | ".
// Slides are separated by blank lines and recorded as sections.
func (e *Extractor) Extract(_ context.Context, src *domain.SourceDocument) (*domain.ExtractedText, error) {
	if src == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(src.Content), int64(len(src.Content)))
	if err != nil {
		return nil, fmt.Errorf("open pptx archive: %w", domain.ErrInvalidInput)
	}

	slides := collectSlides(reader)

	var parts []string
	var sections []domain.Section
	offset := 0

	for i, slide := range slides {
		lines, err := parseSlideXML(slide.content)
		if err != nil || len(lines) == 0 {
			continue
		}

		part := fmt.Sprintf("[Slide %d]\n%s", i+1, strings.Join(lines, "\n"))

		if len(parts) > 0 {
			offset += 2 // "\n\n" separator
		}
		sections = append(sections, domain.Section{
			Kind:   "slide",
			Index:  i + 1,
			Offset: offset,
		})
		offset += utf8.RuneCountInString(part)
		parts = append(parts, part)
	}

	return &domain.ExtractedText{
		SourceFile: src.Path,
		Title:      extractTitle(src.Path),
		Text:       strings.Join(parts, "\n\n"),
		Sections:   sections,
		Extractor:  e.Name(),
	}, nil
}

// slideEntry pairs a slide's archive number with its raw XML.
type slideEntry struct {
	number  int
	content []byte
}

// collectSlides reads all slide parts and sorts them numerically, so
// slide10 follows slide9 rather than slide1.
func collectSlides(reader *zip.Reader) []slideEntry {
	var slides []slideEntry

	for _, file := range reader.File {
		m := slideFile.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		slides = append(slides, slideEntry{number: number, content: content})
	}

	sort.Slice(slides, func(i, j int) bool {
		return slides[i].number < slides[j].number
	})
	return slides
}

// parseSlideXML walks one slide's XML and collects its text lines.
// Text lives in a:t elements grouped into a:p paragraphs; tables nest
// paragraphs inside a:tc cells, which are joined per row with " | ".
func parseSlideXML(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var lines []string
	var para strings.Builder
	var cell []string
	var row []string

	inText := false
	inCell := false

	endParagraph := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if inCell {
			cell = append(cell, text)
		} else {
			lines = append(lines, text)
		}
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse slide xml: %w", domain.ErrInvalidInput)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tr":
				row = nil
			case "tc":
				inCell = true
				cell = nil
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				endParagraph()
			case "tc":
				if text := strings.Join(cell, "\n"); text != "" {
					row = append(row, text)
				}
				inCell = false
			case "tr":
				if len(row) > 0 {
					lines = append(lines, strings.Join(row, " | "))
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return lines, nil
}

// extractTitle extracts a human-readable title from a file path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
