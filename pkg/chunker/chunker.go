package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits text into bounded pieces for a single downstream model call.
type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

const (
	StrategyParagraph = "paragraph"
	StrategySentence  = "sentence"
	StrategyFixed     = "fixed"
)

type ChunkOptions struct {
	ChunkSize    int    // bound in characters (runes)
	ChunkOverlap int    // only used by the fixed strategy
	Strategy     string // "paragraph", "sentence", "fixed"
}

type TextChunk struct {
	Content    string
	Index      int
	Size       int // characters of content, not counting inserted separators
	Paragraphs int
	Start      int // rune offset, fixed strategy only
	End        int
}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize: 1000,
		Strategy:  StrategyParagraph,
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}

	switch opts.Strategy {
	case StrategySentence:
		return chunkBySentence(text, opts)
	case StrategyFixed:
		return chunkFixed(text, opts)
	default:
		return chunkByParagraph(text, opts)
	}
}

// Paragraphs splits text on newlines and drops blank lines.
func Paragraphs(text string) []string {
	var paras []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paras = append(paras, line)
	}
	return paras
}

// chunkByParagraph packs whole paragraphs left to right. A paragraph that
// alone exceeds the bound becomes its own chunk.
func chunkByParagraph(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	var current []string
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, TextChunk{
			Content:    strings.Join(current, "\n"),
			Index:      len(chunks),
			Size:       size,
			Paragraphs: len(current),
		})
		current = nil
		size = 0
	}

	for _, p := range Paragraphs(text) {
		n := utf8.RuneCountInString(p)
		if len(current) > 0 && size+n > opts.ChunkSize {
			flush()
		}
		current = append(current, p)
		size += n
	}
	flush()

	return chunks
}

func chunkFixed(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	runes := []rune(text)
	step := opts.ChunkSize - opts.ChunkOverlap

	for start := 0; start < len(runes); start += step {
		end := min(start+opts.ChunkSize, len(runes))

		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, TextChunk{
				Content:    content,
				Index:      len(chunks),
				Size:       end - start,
				Paragraphs: len(Paragraphs(content)),
				Start:      start,
				End:        end,
			})
		}
		if end == len(runes) {
			break
		}
	}

	return chunks
}

func chunkBySentence(text string, opts ChunkOptions) []TextChunk {
	var chunks []TextChunk
	var current strings.Builder
	size := 0

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, TextChunk{
				Content:    content,
				Index:      len(chunks),
				Size:       utf8.RuneCountInString(content),
				Paragraphs: len(Paragraphs(content)),
			})
		}
		current.Reset()
		size = 0
	}

	for _, s := range splitSentences(text) {
		n := utf8.RuneCountInString(s)
		if size > 0 && size+n > opts.ChunkSize {
			flush()
		}
		current.WriteString(s)
		size += n
	}
	flush()

	return chunks
}

// splitSentences is a punctuation-only splitter; callers that need
// abbreviation-aware boundaries use pkg/sentence instead.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}
