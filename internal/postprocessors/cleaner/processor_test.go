package cleaner

import (
	"context"
	"testing"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "cleaner" {
		t.Errorf("expected name 'cleaner', got '%s'", p.Name())
	}
}

func TestProcessor_Process_NormalisesInPlace(t *testing.T) {
	p := New()
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "first line\r\nsecond line\r\n",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected chunks to pass through unchanged, got %v", chunks)
	}
	if text.Text != "first line\nsecond line" {
		t.Errorf("unexpected cleaned text: %q", text.Text)
	}
}

func TestProcessor_Process_PassesChunksThrough(t *testing.T) {
	p := New()
	text := &domain.ExtractedText{Text: "content"}
	in := []domain.Chunk{{ID: "c-1", Content: "existing"}}

	out, err := p.Process(context.Background(), text, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c-1" {
		t.Errorf("expected input chunks back, got %v", out)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"crlf to lf", "a\r\nb", "a\nb"},
		{"bare cr to lf", "a\rb", "a\nb"},
		{"bom stripped", "\uFEFFhello", "hello"},
		{"control chars dropped", "a\x00b\x08c", "abc"},
		{"tab preserved", "a\tb", "a\tb"},
		{"trailing spaces trimmed", "line  \nnext", "line\nnext"},
		{"blank runs collapsed", "a\n\n\n\nb", "a\n\nb"},
		{"paragraph break kept", "a\n\nb", "a\n\nb"},
		{"surrounding space trimmed", "  a  ", "a"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
