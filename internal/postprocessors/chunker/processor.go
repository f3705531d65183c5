// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 2000

// paragraphBreak matches one or more blank lines separating paragraphs.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Processor splits extracted text into bounded chunks along semantic
// boundaries. Paragraphs are packed whole; a paragraph longer than the
// limit falls back to sentence packing, an oversized sentence to word
// packing, and an oversized word is cut at the limit. Sizes are
// measured in runes so multi-byte scripts are not cut mid-character.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the extracted text into chunks.
// Input chunks are ignored; this processor creates new chunks from the
// document text. Empty text produces no chunks and no error. Chunk
// indices are assigned sequentially from 0 in source order.
func (p *Processor) Process(_ context.Context, text *domain.ExtractedText, _ []domain.Chunk) ([]domain.Chunk, error) {
	if text.IsEmpty() {
		return nil, nil
	}

	segments := p.split(text.Text)
	chunks := make([]domain.Chunk, 0, len(segments))

	for i, segment := range segments {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			Index:      i,
			Content:    segment,
			SourceFile: text.SourceFile,
		})
	}

	return chunks, nil
}

// split breaks text into segments of at most chunkSize runes,
// packing paragraphs first and cascading to finer units only when a
// single unit exceeds the limit. The result is deterministic for a
// given text and chunk size.
func (p *Processor) split(text string) []string {
	paragraphs := splitParagraphs(text)

	var segments []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			segments = append(segments, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range paragraphs {
		paraLen := utf8.RuneCountInString(para)

		// Two runes for the "\n\n" separator when joining paragraphs.
		sep := 0
		if currentLen > 0 {
			sep = 2
		}

		if currentLen+sep+paraLen <= p.chunkSize {
			if currentLen > 0 {
				current.WriteString("\n\n")
				currentLen += 2
			}
			current.WriteString(para)
			currentLen += paraLen
			continue
		}

		flush()

		if paraLen <= p.chunkSize {
			current.WriteString(para)
			currentLen = paraLen
			continue
		}

		segments = append(segments, p.splitBySentence(para)...)
	}

	flush()
	return segments
}

// splitBySentence packs the sentences of an oversized paragraph into
// segments of at most chunkSize runes, cascading to words when a
// single sentence exceeds the limit.
func (p *Processor) splitBySentence(para string) []string {
	sentences := splitSentences(para)

	var segments []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			segments = append(segments, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, sentence := range sentences {
		sentenceLen := utf8.RuneCountInString(sentence)

		sep := 0
		if currentLen > 0 {
			sep = 1
		}

		if currentLen+sep+sentenceLen <= p.chunkSize {
			if currentLen > 0 {
				current.WriteString(" ")
				currentLen++
			}
			current.WriteString(sentence)
			currentLen += sentenceLen
			continue
		}

		flush()

		if sentenceLen <= p.chunkSize {
			current.WriteString(sentence)
			currentLen = sentenceLen
			continue
		}

		segments = append(segments, p.splitByWord(sentence)...)
	}

	flush()
	return segments
}

// splitByWord packs the words of an oversized sentence into segments
// of at most chunkSize runes. A single word longer than the limit is
// cut at chunkSize runes.
func (p *Processor) splitByWord(sentence string) []string {
	words := strings.Fields(sentence)

	var segments []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			segments = append(segments, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		sep := 0
		if currentLen > 0 {
			sep = 1
		}

		if currentLen+sep+wordLen <= p.chunkSize {
			if currentLen > 0 {
				current.WriteString(" ")
				currentLen++
			}
			current.WriteString(word)
			currentLen += wordLen
			continue
		}

		flush()

		if wordLen <= p.chunkSize {
			current.WriteString(word)
			currentLen = wordLen
			continue
		}

		segments = append(segments, hardSplit(word, p.chunkSize)...)
	}

	flush()
	return segments
}

// splitParagraphs splits text on blank lines, trimming each paragraph
// and dropping empty ones.
func splitParagraphs(text string) []string {
	raw := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(raw))
	for _, para := range raw {
		if trimmed := strings.TrimSpace(para); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences splits a paragraph into sentences. ASCII terminators
// end a sentence only when followed by whitespace so decimals and
// abbreviations mostly survive; full-width terminators end one
// unconditionally since CJK text carries no space between sentences.
func splitSentences(para string) []string {
	runes := []rune(para)

	var sentences []string
	var current []rune

	emit := func() {
		if s := strings.TrimSpace(string(current)); s != "" {
			sentences = append(sentences, s)
		}
		current = current[:0]
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current = append(current, r)

		switch r {
		case '。', '！', '？', '；':
			// Keep closing quotes and brackets with their sentence.
			for i+1 < len(runes) && isClosing(runes[i+1]) {
				i++
				current = append(current, runes[i])
			}
			emit()
		case '.', '!', '?', ';':
			for i+1 < len(runes) && isClosing(runes[i+1]) {
				i++
				current = append(current, runes[i])
			}
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				emit()
			}
		}
	}

	emit()
	return sentences
}

// isClosing reports whether r is a closing quote or bracket that
// should stay attached to the preceding sentence.
func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '」', '』', '”', '’', '）', '】':
		return true
	}
	return false
}

// hardSplit cuts a single oversized unit at every maxSize runes.
func hardSplit(unit string, maxSize int) []string {
	runes := []rune(unit)

	segments := make([]string, 0, (len(runes)/maxSize)+1)
	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
	}
	return segments
}
