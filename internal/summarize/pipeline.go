package summarize

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nikhilbhutani/casebrief/pkg/chunker"
	"github.com/nikhilbhutani/casebrief/pkg/sentence"
	"github.com/nikhilbhutani/casebrief/pkg/tokenizer"
)

// Options controls the chunked summarization pipeline. Zero values are
// replaced by the defaults from DefaultOptions.
type Options struct {
	MinInputChars     int                  // shorter input is returned as-is
	Chunk             chunker.ChunkOptions // chunking policy and bound
	ChunkLength       Length               // per-chunk summary length
	FallbackSentences int                  // sentences kept when a chunk summary fails
	FallbackFactor    int                  // final fallback keeps FallbackFactor*Max characters
	Locale            string               // passed to the sentence tokenizer
	CallTimeout       time.Duration        // per summarizer call, 0 means no deadline
}

func DefaultOptions() Options {
	return Options{
		MinInputChars:     50,
		Chunk:             chunker.DefaultOptions(),
		ChunkLength:       Length{Max: 120, Min: 30},
		FallbackSentences: 2,
		FallbackFactor:    2,
		Locale:            sentence.DefaultLocale,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinInputChars <= 0 {
		o.MinInputChars = d.MinInputChars
	}
	if o.Chunk.ChunkSize <= 0 {
		o.Chunk.ChunkSize = d.Chunk.ChunkSize
	}
	if o.Chunk.Strategy == "" {
		o.Chunk.Strategy = d.Chunk.Strategy
	}
	if o.ChunkLength.Max <= 0 {
		o.ChunkLength = d.ChunkLength
	}
	o.ChunkLength = o.ChunkLength.Normalize()
	if o.FallbackSentences <= 0 {
		o.FallbackSentences = d.FallbackSentences
	}
	if o.FallbackFactor <= 0 {
		o.FallbackFactor = d.FallbackFactor
	}
	if o.Locale == "" {
		o.Locale = d.Locale
	}
	if o.CallTimeout < 0 {
		o.CallTimeout = 0
	}
	return o
}

// ChunkReport describes how one chunk was summarized.
type ChunkReport struct {
	Index    int  `json:"index"`
	Size     int  `json:"size"`
	Tokens   int  `json:"tokens"`
	Fallback bool `json:"fallback"`
}

// Result is the pipeline output plus enough detail for callers to tell a
// model summary from a degraded one.
type Result struct {
	Summary       string        `json:"summary"`
	Length        Length        `json:"length"`
	Skipped       bool          `json:"skipped"`
	Chunks        []ChunkReport `json:"chunks,omitempty"`
	FinalFallback bool          `json:"final_fallback"`
}

// ChunkFallbacks counts chunks whose summary came from the sentence fallback.
func (r *Result) ChunkFallbacks() int {
	n := 0
	for _, c := range r.Chunks {
		if c.Fallback {
			n++
		}
	}
	return n
}

// Degraded reports whether any stage used its fallback.
func (r *Result) Degraded() bool {
	return r.FinalFallback || r.ChunkFallbacks() > 0
}

// Pipeline splits long text into chunks, summarizes each, then summarizes
// the joined chunk summaries. It never fails: every summarizer error is
// replaced by a deterministic fallback.
type Pipeline struct {
	summarizer Summarizer
	sentences  sentence.Tokenizer
	chunker    chunker.Chunker
	opts       Options
}

func NewPipeline(s Summarizer, tok sentence.Tokenizer, opts Options) *Pipeline {
	return &Pipeline{
		summarizer: s,
		sentences:  tok,
		chunker:    chunker.New(),
		opts:       opts.withDefaults(),
	}
}

// WithChunker swaps the chunking policy.
func (p *Pipeline) WithChunker(c chunker.Chunker) *Pipeline {
	p.chunker = c
	return p
}

func (p *Pipeline) Options() Options { return p.opts }

func (p *Pipeline) Summarize(ctx context.Context, text string, length Length) *Result {
	length = length.Normalize()
	text = strings.TrimSpace(text)

	res := &Result{Length: length}
	if utf8.RuneCountInString(text) < p.opts.MinInputChars {
		res.Summary = text
		res.Skipped = true
		return res
	}

	chunks := p.chunker.Chunk(text, p.opts.Chunk)
	summaries := make([]string, 0, len(chunks))
	for _, c := range chunks {
		s, err := p.call(ctx, c.Content, p.opts.ChunkLength)
		report := ChunkReport{
			Index:  c.Index,
			Size:   c.Size,
			Tokens: tokenizer.CountTokens(c.Content),
		}
		if err != nil {
			slog.Warn("chunk summary failed, using leading sentences",
				"chunk", c.Index,
				"size", c.Size,
				"error", err,
			)
			s = p.leadingSentences(c.Content)
			report.Fallback = true
		}
		summaries = append(summaries, s)
		res.Chunks = append(res.Chunks, report)
	}

	joined := strings.Join(summaries, " ")

	final, err := p.call(ctx, joined, length)
	if err != nil {
		slog.Warn("final summary failed, truncating joined chunk summaries",
			"chunks", len(chunks),
			"error", err,
		)
		final = tokenizer.TruncateRunes(joined, p.opts.FallbackFactor*length.Max)
		res.FinalFallback = true
	}

	res.Summary = final
	return res
}

func (p *Pipeline) call(ctx context.Context, text string, length Length) (string, error) {
	if p.summarizer == nil {
		return "", ErrEmptySummary
	}
	if p.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.CallTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := p.summarizer.Summarize(ctx, text, length)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}

func (p *Pipeline) leadingSentences(chunk string) string {
	if p.sentences != nil {
		if s := sentence.First(p.sentences, chunk, p.opts.Locale, p.opts.FallbackSentences); s != "" {
			return s
		}
	}
	return strings.TrimSpace(chunk)
}
