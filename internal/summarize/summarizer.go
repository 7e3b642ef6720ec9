package summarize

import (
	"context"
	"errors"
)

// ErrEmptySummary is returned by summarizers whose backend produced no text.
var ErrEmptySummary = errors.New("summarizer returned empty text")

// Length is an advisory summary length in the summarizer's own unit
// (tokens for the LLM backends).
type Length struct {
	Max int `json:"max_len"`
	Min int `json:"min_len"`
}

// DefaultLength matches the free-tier summary bounds.
var DefaultLength = Length{Max: 180, Min: 40}

// Normalize fills a missing Max from DefaultLength and keeps Min in [0, Max).
func (l Length) Normalize() Length {
	if l.Max <= 0 {
		l.Max = DefaultLength.Max
	}
	if l.Min < 0 {
		l.Min = 0
	}
	if l.Min >= l.Max {
		l.Min = l.Max / 2
	}
	return l
}

// Summarizer maps text plus length hints to a shorter text. Implementations
// are expected to be deterministic for a given input and may fail.
type Summarizer interface {
	Summarize(ctx context.Context, text string, length Length) (string, error)
}

// SummarizerFunc adapts a plain function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string, length Length) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string, length Length) (string, error) {
	return f(ctx, text, length)
}
