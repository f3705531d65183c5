package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("zero value ignored", func(t *testing.T) {
		p := New(WithChunkSize(0))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyText(t *testing.T) {
	p := New()
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "   \n\n  ",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestProcessor_Process_SmallText(t *testing.T) {
	p := New(WithChunkSize(100))
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "This is a small piece of content.",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small text, got %d", len(chunks))
	}

	if chunks[0].SourceFile != text.SourceFile {
		t.Errorf("expected SourceFile '%s', got '%s'", text.SourceFile, chunks[0].SourceFile)
	}
	if chunks[0].Content != text.Text {
		t.Errorf("expected content to match document text")
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestProcessor_Process_PacksParagraphsTogether(t *testing.T) {
	p := New(WithChunkSize(100))
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "First paragraph.\n\nSecond paragraph.",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected both paragraphs in 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("unexpected chunk content: %q", chunks[0].Content)
	}
}

func TestProcessor_Process_SplitsAtParagraphBoundary(t *testing.T) {
	p := New(WithChunkSize(50))

	first := strings.Repeat("a", 30)
	second := strings.Repeat("b", 30)
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       first + "\n\n" + second,
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != first {
		t.Errorf("expected first paragraph alone in chunk 0, got %q", chunks[0].Content)
	}
	if chunks[1].Content != second {
		t.Errorf("expected second paragraph alone in chunk 1, got %q", chunks[1].Content)
	}
}

func TestProcessor_Process_OversizedParagraphFallsBackToSentences(t *testing.T) {
	p := New(WithChunkSize(40))
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "One short sentence here. Another short one. A third short sentence follows.",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected sentence-level split, got %d chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk.Content) > 40 {
			t.Errorf("chunk exceeds size limit: %q", chunk.Content)
		}
		if !strings.HasSuffix(chunk.Content, ".") {
			t.Errorf("expected chunk to end at a sentence boundary: %q", chunk.Content)
		}
	}
}

func TestProcessor_Process_OversizedSentenceFallsBackToWords(t *testing.T) {
	p := New(WithChunkSize(20))
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "several plain words with no terminator at all in sight",
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected word-level split, got %d chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk.Content) > 20 {
			t.Errorf("chunk exceeds size limit: %q", chunk.Content)
		}
		if strings.HasPrefix(chunk.Content, " ") || strings.HasSuffix(chunk.Content, " ") {
			t.Errorf("expected chunk trimmed at word boundary: %q", chunk.Content)
		}
	}
}

func TestProcessor_Process_OversizedWordHardSplit(t *testing.T) {
	p := New(WithChunkSize(10))
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       strings.Repeat("x", 25),
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks from hard split, got %d", len(chunks))
	}
	if chunks[0].Content != strings.Repeat("x", 10) {
		t.Errorf("expected first chunk of 10 runes, got %q", chunks[0].Content)
	}
	if chunks[2].Content != strings.Repeat("x", 5) {
		t.Errorf("expected final chunk of 5 runes, got %q", chunks[2].Content)
	}
}

func TestProcessor_Process_MultiByteRunes(t *testing.T) {
	p := New(WithChunkSize(10))

	// 30 three-byte runes; a byte-based splitter would cut mid-character.
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       strings.Repeat("語", 30),
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk.Content) {
			t.Errorf("chunk is not valid UTF-8: %q", chunk.Content)
		}
		if utf8.RuneCountInString(chunk.Content) != 10 {
			t.Errorf("expected 10 runes per chunk, got %d", utf8.RuneCountInString(chunk.Content))
		}
	}
}

func TestProcessor_Process_SequentialIndices(t *testing.T) {
	p := New(WithChunkSize(30))

	var paragraphs []string
	for i := 0; i < 5; i++ {
		paragraphs = append(paragraphs, strings.Repeat("p", 25))
	}
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       strings.Join(paragraphs, "\n\n"),
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("expected index %d, got %d", i, chunk.Index)
		}
	}

	seenIDs := make(map[string]bool)
	for _, chunk := range chunks {
		if seenIDs[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		seenIDs[chunk.ID] = true
	}
}

func TestProcessor_Process_Reconstruction(t *testing.T) {
	p := New(WithChunkSize(35))

	original := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs.\n\n" +
		"Sphinx of black quartz, judge my vow. " +
		"How vexingly quick daft zebras jump."
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       original,
	}

	chunks, err := p.Process(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parts []string
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}

	// Joining chunks in index order reproduces the text up to whitespace.
	got := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	want := strings.Join(strings.Fields(original), " ")
	if got != want {
		t.Errorf("reconstructed text differs:\n got: %q\nwant: %q", got, want)
	}
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	p := New(WithChunkSize(40))
	input := "Alpha beta gamma. Delta epsilon zeta.\n\nEta theta iota kappa lambda mu nu xi omicron pi rho sigma."

	first, err := p.Process(context.Background(), &domain.ExtractedText{SourceFile: "doc.txt", Text: input}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), &domain.ExtractedText{SourceFile: "doc.txt", Text: input}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content {
			t.Errorf("chunk %d differs between runs: %q vs %q", i, first[i].Content, second[i].Content)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "ascii terminators",
			input:    "First one. Second one! Third one?",
			expected: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name:     "decimal not split",
			input:    "Pi is 3.14 roughly. Next sentence.",
			expected: []string{"Pi is 3.14 roughly.", "Next sentence."},
		},
		{
			name:     "full width terminators",
			input:    "这是第一句。这是第二句！",
			expected: []string{"这是第一句。", "这是第二句！"},
		},
		{
			name:     "closing quote stays attached",
			input:    `He said "stop." Then left.`,
			expected: []string{`He said "stop."`, "Then left."},
		},
		{
			name:     "no terminator",
			input:    "no terminator here",
			expected: []string{"no terminator here"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d sentences, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("sentence %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestProcessor_Process_IgnoresInputChunks(t *testing.T) {
	p := New(WithChunkSize(100))

	existing := []domain.Chunk{
		{ID: "existing", Content: "should be ignored"},
	}
	text := &domain.ExtractedText{
		SourceFile: "doc.txt",
		Text:       "fresh content",
	}

	chunks, err := p.Process(context.Background(), text, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "fresh content" {
		t.Errorf("expected fresh content, got %q", chunks[0].Content)
	}
}
